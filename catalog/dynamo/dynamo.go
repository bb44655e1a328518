// Package dynamo stores dataset catalogs in Amazon DynamoDB.
//
// Each partition is one item keyed by dataset (partition key) and blob name
// (sort key):
//
//	aws dynamodb create-table \
//	  --table-name geoknn-catalog \
//	  --attribute-definitions AttributeName=dataset,AttributeType=S AttributeName=name,AttributeType=S \
//	  --key-schema AttributeName=dataset,KeyType=HASH AttributeName=name,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/model"
)

// Client is the subset of the DynamoDB API used by Catalog.
// *dynamodb.Client satisfies it.
type Client interface {
	dynamodb.QueryAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

const (
	attrDataset = "dataset"
	attrName    = "name"
	attrFormat  = "format"
	attrPoints  = "points"
	attrMinX    = "min_x"
	attrMinY    = "min_y"
	attrMaxX    = "max_x"
	attrMaxY    = "max_y"
)

// Catalog implements catalog.Catalog on a DynamoDB table.
type Catalog struct {
	client Client
	table  string
}

var _ catalog.Catalog = (*Catalog)(nil)

// New creates a Catalog using the default AWS credential chain.
func New(ctx context.Context, table string, optFns ...func(*config.LoadOptions) error) (*Catalog, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("dynamo: load aws config: %w", err)
	}
	return NewCatalog(dynamodb.NewFromConfig(cfg), table), nil
}

// NewCatalog creates a Catalog on an existing client.
func NewCatalog(client Client, table string) *Catalog {
	return &Catalog{client: client, table: table}
}

// Put writes one item per entry and removes items of partitions that are no
// longer listed.
func (c *Catalog) Put(ctx context.Context, dataset string, entries []catalog.Entry) error {
	existing, err := c.query(ctx, dataset)
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		keep[e.Name] = struct{}{}
		if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(c.table),
			Item:      marshalEntry(dataset, e),
		}); err != nil {
			return fmt.Errorf("dynamo: put %s: %w", e.Name, err)
		}
	}

	for _, e := range existing {
		if _, ok := keep[e.Name]; ok {
			continue
		}
		if _, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(c.table),
			Key: map[string]types.AttributeValue{
				attrDataset: &types.AttributeValueMemberS{Value: dataset},
				attrName:    &types.AttributeValueMemberS{Value: e.Name},
			},
		}); err != nil {
			return fmt.Errorf("dynamo: delete %s: %w", e.Name, err)
		}
	}
	return nil
}

// Get returns the entries of dataset in sort-key order.
func (c *Catalog) Get(ctx context.Context, dataset string) ([]catalog.Entry, error) {
	entries, err := c.query(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, dataset)
	}
	return entries, nil
}

func (c *Catalog) query(ctx context.Context, dataset string) ([]catalog.Entry, error) {
	paginator := dynamodb.NewQueryPaginator(c.client, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("#ds = :ds"),
		ExpressionAttributeNames: map[string]string{
			"#ds": attrDataset,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ds": &types.AttributeValueMemberS{Value: dataset},
		},
	})

	var entries []catalog.Entry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamo: query %s: %w", dataset, err)
		}
		for _, item := range page.Items {
			e, err := unmarshalEntry(item)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// number encodes v as a DynamoDB number. NaN and the infinities have no
// number form and are stored as strings.
func number(v float64) types.AttributeValue {
	if !catalog.IsFinite(v) {
		return &types.AttributeValueMemberS{Value: catalog.FormatFloat(v)}
	}
	return &types.AttributeValueMemberN{Value: catalog.FormatFloat(v)}
}

func marshalEntry(dataset string, e catalog.Entry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrDataset: &types.AttributeValueMemberS{Value: dataset},
		attrName:    &types.AttributeValueMemberS{Value: e.Name},
		attrFormat:  &types.AttributeValueMemberS{Value: e.Format},
		attrPoints:  &types.AttributeValueMemberN{Value: strconv.FormatInt(e.Points, 10)},
		attrMinX:    number(e.Bounds.Min.X()),
		attrMinY:    number(e.Bounds.Min.Y()),
		attrMaxX:    number(e.Bounds.Max.X()),
		attrMaxY:    number(e.Bounds.Max.Y()),
	}
}

var errInvalidItem = errors.New("dynamo: invalid catalog item")

func stringAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("%w: missing %s", errInvalidItem, key)
	}
	return v.Value, nil
}

func floatAttr(item map[string]types.AttributeValue, key string) (float64, error) {
	var raw string
	switch v := item[key].(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	default:
		return 0, fmt.Errorf("%w: missing %s", errInvalidItem, key)
	}
	f, err := catalog.ParseFloat(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errInvalidItem, key, err)
	}
	return f, nil
}

func unmarshalEntry(item map[string]types.AttributeValue) (catalog.Entry, error) {
	var (
		e   catalog.Entry
		err error
	)
	if e.Name, err = stringAttr(item, attrName); err != nil {
		return e, err
	}
	if e.Format, err = stringAttr(item, attrFormat); err != nil {
		return e, err
	}

	pts, ok := item[attrPoints].(*types.AttributeValueMemberN)
	if !ok {
		return e, fmt.Errorf("%w: missing %s", errInvalidItem, attrPoints)
	}
	if e.Points, err = strconv.ParseInt(pts.Value, 10, 64); err != nil {
		return e, fmt.Errorf("%w: %s: %w", errInvalidItem, attrPoints, err)
	}

	var coords [4]float64
	for i, key := range []string{attrMinX, attrMinY, attrMaxX, attrMaxY} {
		if coords[i], err = floatAttr(item, key); err != nil {
			return e, err
		}
	}
	e.Bounds = model.Bound{
		Min: model.Point{coords[0], coords[1]},
		Max: model.Point{coords[2], coords[3]},
	}
	return e, nil
}
