package dynamo

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB table keyed by (dataset, name).
// Query returns pageSize items per page to exercise pagination.
type mockDDBClient struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	queries  int
	failPut  error
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items:    make(map[string]map[string]types.AttributeValue),
		pageSize: 2,
	}
}

func itemKey(item map[string]types.AttributeValue) string {
	return item[attrDataset].(*types.AttributeValueMemberS).Value + "\x00" +
		item[attrName].(*types.AttributeValueMemberS).Value
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return nil, m.failPut
	}
	m.items[itemKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++

	dataset := params.ExpressionAttributeValues[":ds"].(*types.AttributeValueMemberS).Value

	var keys []string
	for k := range m.items {
		if strings.HasPrefix(k, dataset+"\x00") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	start := 0
	if params.ExclusiveStartKey != nil {
		after := itemKey(params.ExclusiveStartKey)
		start, _ = slices.BinarySearch(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	end := min(start+m.pageSize, len(keys))

	out := &dynamodb.QueryOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, m.items[k])
	}
	if end < len(keys) {
		last := m.items[keys[end-1]]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			attrDataset: last[attrDataset],
			attrName:    last[attrName],
		}
	}
	return out, nil
}

func sampleEntries() []catalog.Entry {
	return []catalog.Entry{
		{Name: "cities/part-0000.pts", Format: "pts", Points: 10, Bounds: model.Bound{Min: model.Point{-1.5, 0}, Max: model.Point{2, 3.25}}},
		{Name: "cities/part-0001.pts", Format: "pts", Points: 7},
		{Name: "cities/part-0002.shp", Format: "shp", Points: 3},
	}
}

func TestCatalog_PutGet(t *testing.T) {
	ctx := context.Background()
	client := newMockDDBClient()
	cat := NewCatalog(client, "geoknn-catalog")

	require.NoError(t, cat.Put(ctx, "cities", sampleEntries()))
	require.NoError(t, cat.Put(ctx, "rivers", sampleEntries()[:1]))

	got, err := cat.Get(ctx, "cities")
	require.NoError(t, err)
	assert.Equal(t, sampleEntries(), got)
	assert.GreaterOrEqual(t, client.queries, 2)
}

func TestCatalog_PutRemovesStale(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "t")

	require.NoError(t, cat.Put(ctx, "cities", sampleEntries()))
	require.NoError(t, cat.Put(ctx, "cities", sampleEntries()[1:2]))

	got, err := cat.Get(ctx, "cities")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cities/part-0001.pts", got[0].Name)
}

func TestCatalog_NotFound(t *testing.T) {
	cat := NewCatalog(newMockDDBClient(), "t")
	_, err := cat.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalog_PutError(t *testing.T) {
	client := newMockDDBClient()
	client.failPut = errors.New("throttled")
	cat := NewCatalog(client, "t")

	err := cat.Put(context.Background(), "cities", sampleEntries())
	assert.ErrorIs(t, err, client.failPut)
}

func TestUnmarshalEntry_Invalid(t *testing.T) {
	item := marshalEntry("cities", sampleEntries()[0])
	delete(item, attrMaxY)
	_, err := unmarshalEntry(item)
	assert.ErrorIs(t, err, errInvalidItem)

	item = marshalEntry("cities", sampleEntries()[0])
	item[attrPoints] = &types.AttributeValueMemberN{Value: "many"}
	_, err = unmarshalEntry(item)
	assert.ErrorIs(t, err, errInvalidItem)

	item = marshalEntry("cities", sampleEntries()[0])
	item[attrName] = &types.AttributeValueMemberN{Value: "1"}
	_, err = unmarshalEntry(item)
	assert.ErrorIs(t, err, errInvalidItem)
}

func TestCatalog_NonFiniteBounds(t *testing.T) {
	ctx := context.Background()
	client := newMockDDBClient()
	cat := NewCatalog(client, "t")

	e := catalog.Entry{
		Name:   "odd/part-0000.pts",
		Format: "pts",
		Points: 3,
		Bounds: model.Bound{Min: model.Point{math.NaN(), math.Inf(-1)}, Max: model.Point{math.Inf(1), 2}},
	}
	require.NoError(t, cat.Put(ctx, "odd", []catalog.Entry{e}))

	item := marshalEntry("odd", e)
	assert.IsType(t, &types.AttributeValueMemberS{}, item[attrMinX])
	assert.IsType(t, &types.AttributeValueMemberN{}, item[attrMaxY])

	got, err := cat.Get(ctx, "odd")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0].Bounds.Min.X()))
	assert.True(t, math.IsInf(got[0].Bounds.Min.Y(), -1))
	assert.True(t, math.IsInf(got[0].Bounds.Max.X(), 1))
	assert.Equal(t, 2.0, got[0].Bounds.Max.Y())
}
