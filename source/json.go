package source

import (
	"io"

	"github.com/reoring/datafunc/schema"
)

// JSONDriver returns a Driver backed by goccy/go-json. Integral numbers
// decode as int64, the rest as float64.
func JSONDriver() Driver { return jsonDriver{} }

type jsonDriver struct{}

func (jsonDriver) Name() string { return "go-json" }

func (jsonDriver) Decode(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return schema.DecodeJSON(data)
}
