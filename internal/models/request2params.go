package models

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/echoverse/internal/utils"
)

const responseSchemaName = "emotion_analysis"

// buildOpenAIParams converts an adk request to chat completion parameters.
func buildOpenAIParams(req *model.LLMRequest, modelName string) *openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}
	if req.Model == "" {
		params.Model = modelName
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Config != nil && req.Config.SystemInstruction != nil {
		if text := utils.ExtractContentText(req.Config.SystemInstruction); text != "" {
			messages = append(messages, openai.SystemMessage(text))
		}
	}
	messages = append(messages, convertContentsToMessages(req.Contents)...)
	if len(messages) > 0 {
		params.Messages = messages
	}

	if req.Config == nil {
		return &params
	}
	if req.Config.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Config.Temperature))
	}
	if req.Config.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
	}
	if req.Config.TopP != nil {
		params.TopP = openai.Float(float64(*req.Config.TopP))
	}

	// a response schema asks for structured output; a bare JSON mime type
	// falls back to json_object mode
	if schema := responseSchema(req.Config.ResponseJsonSchema); schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   responseSchemaName,
					Schema: schema,
				},
			},
		}
	} else if req.Config.ResponseMIMEType == "application/json" {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	return &params
}

func responseSchema(v any) map[string]any {
	switch s := v.(type) {
	case *jsonschema.Schema:
		if s == nil {
			return nil
		}
		return convertSchemaToJSONSchema(s)
	case map[string]any:
		return s
	default:
		return nil
	}
}

// convertSchemaToJSONSchema converts a top-level object schema to a plain map.
func convertSchemaToJSONSchema(schema *jsonschema.Schema) map[string]any {
	result := convertSchemaProperty(schema)
	if _, ok := result["type"]; !ok {
		result["type"] = "object"
	}
	if _, ok := result["required"]; !ok {
		result["required"] = []string{}
	}
	result["additionalProperties"] = false
	return result
}

// convertSchemaProperty converts a single jsonschema.Schema node.
func convertSchemaProperty(schema *jsonschema.Schema) map[string]any {
	if schema == nil {
		return nil
	}

	prop := make(map[string]any)
	if len(schema.Types) > 0 {
		prop["type"] = schema.Types[0]
	} else if schema.Type != "" {
		prop["type"] = schema.Type
	}
	if schema.Description != "" {
		prop["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		prop["enum"] = schema.Enum
	}
	if schema.Minimum != nil {
		prop["minimum"] = *schema.Minimum
	}
	if schema.Maximum != nil {
		prop["maximum"] = *schema.Maximum
	}
	if schema.Items != nil {
		prop["items"] = convertSchemaProperty(schema.Items)
	}
	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, propSchema := range schema.Properties {
			if propSchema != nil {
				properties[name] = convertSchemaProperty(propSchema)
			}
		}
		prop["properties"] = properties
	}
	if len(schema.Required) > 0 {
		prop["required"] = schema.Required
	}
	return prop
}

// convertContentsToMessages converts genai contents to chat messages. Only
// text parts are carried over.
func convertContentsToMessages(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, content := range contents {
		if content == nil {
			continue
		}
		text := utils.ExtractContentText(content)
		switch content.Role {
		case "model", "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}
