package constant

// Few-shot conversation for extracting metadata filter conditions from a
// user query. The system prompt fixes the output contract, two worked rounds
// anchor the format, and the live round carries the query plus the field list.
const (
	MetadataFilterSystemPrompt = `You are a helpful assistant that extracts structured metadata filters from a user's search query.
Given the user's query and the list of available metadata field names, identify which fields the query constrains and with which comparison.

Rules:
1. Only use field names from the provided list. Never invent field names.
2. Allowed comparison operators: "contains", "not contains", "start with", "end with", "=", "is not", "empty", "not empty", "<", ">", "<=", ">=".
3. Output MUST be valid JSON of the form:
   {"metadata_map": [{"metadata_field_name": "...", "metadata_field_value": "...", "comparison_operator": "..."}]}
4. If the query constrains nothing, output {"metadata_map": []}.
5. Output the JSON only, with no explanation.`

	MetadataFilterUserExample1 = `Query: "articles written by John Doe after 2020"
Metadata fields: ["author", "published_year", "category"]`

	MetadataFilterAssistantExample1 = `{"metadata_map": [{"metadata_field_name": "author", "metadata_field_value": "John Doe", "comparison_operator": "="}, {"metadata_field_name": "published_year", "metadata_field_value": 2020, "comparison_operator": ">"}]}`

	MetadataFilterUserExample2 = `Query: "reports in the finance category that mention quarterly revenue"
Metadata fields: ["author", "category", "department"]`

	MetadataFilterAssistantExample2 = `{"metadata_map": [{"metadata_field_name": "category", "metadata_field_value": "finance", "comparison_operator": "="}]}`

	// MetadataFilterUserPrompt is the live round: first %s is the query,
	// second %s is the JSON-encoded field name list.
	MetadataFilterUserPrompt = `Query: "%s"
Metadata fields: %s`
)
