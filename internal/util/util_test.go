package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refundArgs struct {
	OrderID string `json:"order_id" description:"The order identifier"`
	Reason  string `json:"reason,omitempty" enum:"damaged|late|other"`
	Amount  *int   `json:"amount"`
	Notify  bool   `json:"notify"`
}

func TestSchemaFromStruct(t *testing.T) {
	schema := SchemaFromStruct(&refundArgs{})
	props := schema["properties"].(map[string]any)

	assert.Equal(t, TypeObject, schema["type"])
	assert.Len(t, props, 4)
	assert.Equal(t, "The order identifier", props["order_id"].(map[string]any)["description"])
	assert.Equal(t, []any{"damaged", "late", "other"}, props["reason"].(map[string]any)["enum"])
	assert.Equal(t, TypeInteger, props["amount"].(map[string]any)["type"])
	assert.Equal(t, TypeBoolean, props["notify"].(map[string]any)["type"])
	assert.Equal(t, []string{"order_id", "notify"}, schema["required"])

	assert.Equal(t, ObjectSchema(nil), SchemaFromStruct("not a struct"))
}

func TestValidateParameters_RequiredShapes(t *testing.T) {
	built := ObjectSchema(map[string]Property{"agent": {Type: TypeString}}, "agent")
	decoded := map[string]any{
		"properties": map[string]any{"agent": map[string]any{"type": "string"}},
		"required":   []any{"agent"},
	}
	for _, schema := range []map[string]any{built, decoded} {
		for _, args := range []map[string]any{{}, {"agent": nil}} {
			err := ValidateParameters(args, schema)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, "agent", argErr.Field)
		}

		assert.NoError(t, ValidateParameters(map[string]any{"agent": "Refund", "extra": 1}, schema))
		assert.Error(t, ValidateParameters(map[string]any{"agent": 3}, schema))
	}
}

func TestValidateParameters_Enum(t *testing.T) {
	schema := ObjectSchema(map[string]Property{
		"agent": {Type: TypeString, Enum: []string{"Refund", "OrderStatus"}},
	}, "agent")

	assert.NoError(t, ValidateParameters(map[string]any{"agent": "OrderStatus"}, schema))

	err := ValidateParameters(map[string]any{"agent": "Billing"}, schema)
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "Billing", argErr.Value)
	assert.EqualError(t, err, `argument "agent": must be one of [Refund, OrderStatus]`)

	closed := ObjectSchema(map[string]Property{"agent": {Type: TypeString, Enum: []string{}}})
	assert.Error(t, ValidateParameters(map[string]any{"agent": "Refund"}, closed))

	open := ObjectSchema(map[string]Property{"agent": {Type: TypeString}})
	assert.NoError(t, ValidateParameters(map[string]any{"agent": "Refund"}, open))
}

func TestValidateParameters_NumberKinds(t *testing.T) {
	schema := ObjectSchema(map[string]Property{
		"n": {Type: TypeInteger},
		"f": {Type: TypeNumber},
	})
	assert.NoError(t, ValidateParameters(map[string]any{"n": float64(3), "f": 2.5}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"n": 3, "f": 2}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"n": 3.5}, schema))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)

	out, err = RenderTemplate(`You are {{upper .name}}. Targets: {{join ", " .targets}}. {{default "none" .missing}}`, map[string]any{
		"name":    "Triage",
		"targets": []string{"Refund", "OrderStatus"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are TRIAGE. Targets: Refund, OrderStatus. none", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.ErrorContains(t, err, "parse instruction")
}
