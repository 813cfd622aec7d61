package handlers

import "github.com/santhosh-tekuri/jsonschema/v5"

// Схемы тел запросов. Бизнес-правила проверяются в сервисах.
var (
	providerSchema = jsonschema.MustCompileString("provider.json", `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 100}
		},
		"required": ["name"],
		"additionalProperties": false
	}`)

	jobSchema = jsonschema.MustCompileString("job.json", `{
		"type": "object",
		"properties": {
			"description": {"type": "string", "minLength": 1, "maxLength": 2000},
			"endDate": {"type": "string", "minLength": 10}
		},
		"required": ["description", "endDate"],
		"additionalProperties": false
	}`)

	offerSchema = jsonschema.MustCompileString("offer.json", `{
		"type": "object",
		"properties": {
			"toProviderId": {"type": "string", "minLength": 1},
			"jobId": {"type": "string", "minLength": 1}
		},
		"required": ["toProviderId", "jobId"],
		"additionalProperties": false
	}`)

	ratingSchema = jsonschema.MustCompileString("rating.json", `{
		"type": "object",
		"properties": {
			"rating": {"type": "integer", "minimum": 1, "maximum": 5}
		},
		"required": ["rating"],
		"additionalProperties": false
	}`)
)
