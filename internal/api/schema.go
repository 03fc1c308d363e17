package api

import "catalog-search/internal/common/validation"

const searchBodySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "definitions": {
    "ids": {
      "oneOf": [
        {"type": "string", "maxLength": 2000},
        {"type": "array", "items": {"type": "string", "maxLength": 200}, "maxItems": 100}
      ]
    },
    "price": {"type": ["number", "string", "null"]}
  },
  "properties": {
    "q":           {"type": "string", "maxLength": 200},
    "sort":        {"type": "string", "maxLength": 50},
    "page":        {"type": "integer", "minimum": 1},
    "limit":       {"type": "integer", "minimum": 1},
    "category_id": {"$ref": "#/definitions/ids"},
    "status":      {"$ref": "#/definitions/ids"},
    "form":        {"$ref": "#/definitions/ids"},
    "brand":       {"$ref": "#/definitions/ids"},
    "ingredient":  {"$ref": "#/definitions/ids"},
    "size":        {"$ref": "#/definitions/ids"},
    "price_min":   {"$ref": "#/definitions/price"},
    "price_max":   {"$ref": "#/definitions/price"},
    "region_id":   {"type": "string", "maxLength": 100}
  }
}`

var searchSchema = validation.MustCompile(searchBodySchema)
