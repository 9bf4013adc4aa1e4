package strategy

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/suite"
)

type JsonSchemaTestSuite struct {
	suite.Suite
}

func TestJsonSchemaTestSuite(t *testing.T) {
	suite.Run(t, new(JsonSchemaTestSuite))
}

type side string

type pairConfig struct {
	Symbols  []string      `json:"symbols" jsonschema:"title=Symbols,minItems=2,maxItems=2"`
	Lookback int           `json:"lookback" jsonschema:"title=Lookback,minimum=3,default=20"`
	Side     side          `json:"side"`
	Timeout  time.Duration `json:"timeout"`
}

func (suite *JsonSchemaTestSuite) properties(raw string) map[string]map[string]interface{} {
	var schema struct {
		Properties map[string]map[string]interface{} `json:"properties"`
	}

	suite.Require().NoError(json.Unmarshal([]byte(raw), &schema))

	return schema.Properties
}

func (suite *JsonSchemaTestSuite) TestToJSONSchema() {
	raw, err := ToJSONSchema(pairConfig{})
	suite.Require().NoError(err)

	properties := suite.properties(raw)
	suite.Equal("Lookback", properties["lookback"]["title"])
	suite.Equal(float64(2), properties["symbols"]["minItems"])
	suite.Equal("string", properties["side"]["type"])
}

func (suite *JsonSchemaTestSuite) TestDurationsAreStrings() {
	raw, err := ToJSONSchema(pairConfig{})
	suite.Require().NoError(err)

	timeout := suite.properties(raw)["timeout"]
	suite.Equal("string", timeout["type"])
	suite.Equal(DurationPattern, timeout["pattern"])
}

func (suite *JsonSchemaTestSuite) TestMappers() {
	enum := func(t reflect.Type) *jsonschema.Schema {
		if t == reflect.TypeOf(side("")) {
			return &jsonschema.Schema{Type: "string", Enum: []any{"long", "short"}}
		}

		return nil
	}

	raw, err := ToJSONSchema(pairConfig{}, enum)
	suite.Require().NoError(err)

	suite.Equal([]interface{}{"long", "short"}, suite.properties(raw)["side"]["enum"])
}
