package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name   string     `json:"name"`
	Points int64      `json:"points"`
	Bounds [4]float64 `json:"bounds"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := []entry{
		{Name: "part-0000.pts", Points: 42, Bounds: [4]float64{-1, -2, 3, 4.5}},
		{Name: "part-0001.shp", Points: 0},
	}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var out []entry
				require.NoError(t, dec.Unmarshal(MustMarshal(enc, in), &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(nil, make(chan int)) })
	assert.Equal(t, `{"name":"","points":0,"bounds":[0,0,0,0]}`, string(MustMarshal(nil, entry{})))
}

func TestGoJSON_MarshalIndent(t *testing.T) {
	b, err := GoJSON{}.MarshalIndent(map[string]int{"k": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": 1\n}", string(b))
}
