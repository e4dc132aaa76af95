package itinerary

import "encoding/json"

// SchemaJSON is the structured-output contract for assistant replies. The
// structured path of Parse consumes documents conforming to it.
const SchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://example.com/itinerary.schema.json",
  "type": "object",
  "required": ["destination", "dates", "budget", "steps"],
  "additionalProperties": false,
  "properties": {
    "destination": {
      "type": "string",
      "minLength": 1,
      "description": "Name of the destination, or theme of the trip when it spans many disparate places"
    },
    "dates": {
      "type": "object",
      "required": ["start", "end"],
      "properties": {
        "start": {"type": "string", "format": "date"},
        "end": {"type": "string", "format": "date"}
      }
    },
    "budget": {
      "type": "integer",
      "minimum": 1,
      "description": "Estimated total budget in euros"
    },
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "type", "price_range", "description", "eta", "areas", "cities"],
        "additionalProperties": false,
        "properties": {
          "title": {
            "type": "string",
            "minLength": 1,
            "description": "Brief designation of the activity, including the main neighbourhood or district"
          },
          "type": {
            "type": "string",
            "enum": ["transit", "accommodation", "city-sightseeing", "culture", "food", "wellness", "nature", "sports", "shopping", "self-enrichment"]
          },
          "duration_minutes": {"type": "integer", "minimum": 1},
          "price_range": {
            "type": "integer",
            "minimum": 1,
            "maximum": 5,
            "description": "Relative price range, higher means more expensive"
          },
          "description": {"type": "string", "minLength": 1, "maxLength": 1000},
          "eta": {"type": "string", "format": "date-time"},
          "areas": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "cities": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "must_see": {"type": "boolean"}
        }
      }
    }
  }
}`

var schemaDoc = mustSchema()

func mustSchema() map[string]any {
	var doc map[string]any
	if err := json.Unmarshal([]byte(SchemaJSON), &doc); err != nil {
		panic("itinerary: invalid embedded schema: " + err.Error())
	}
	return doc
}

// Schema returns the decoded schema document, suitable for a
// schema-constrained response format.
func Schema() map[string]any {
	return schemaDoc
}
