package quizgen

// draftSchema constrains a generated draft: exactly five multiple-choice
// questions, four options each, a 0-based correct index, and an explanation.
const draftSchema = `{
	"type": "array",
	"minItems": 5,
	"maxItems": 5,
	"items": {
		"type": "object",
		"properties": {
			"question": {
				"type": "string",
				"minLength": 1,
				"description": "The question prompt; inline math may use $...$ spans"
			},
			"options": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 4,
				"maxItems": 4,
				"description": "Exactly 4 answer choices"
			},
			"correctIndex": {
				"type": "integer",
				"minimum": 0,
				"maximum": 3,
				"description": "0-based index of the correct option"
			},
			"explanation": {
				"type": "string",
				"description": "Short worked explanation of the correct answer"
			}
		},
		"required": ["question", "options", "correctIndex", "explanation"],
		"additionalProperties": false
	}
}`
