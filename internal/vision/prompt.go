// internal/vision/prompt.go
package vision

import (
	"fmt"
	"strings"
)

// System prompts paired with the user prompts below. The deep variant is
// stricter because its output must pass schema validation.
const (
	QuickSystemPrompt = "You are a JSON-only API. Respond with valid JSON and nothing else."

	DeepSystemPrompt = "You are a High-Precision Vision Annotation Engine. " +
		"Return ONLY valid JSON matching the requested schema. " +
		"Every string field must be non-empty; use \"unknown\" when unsure."
)

const deepPromptBase = `Identify ALL distinct objects visible in the image (high recall). For EACH object category, provide:
- name: common noun label, lowercase, singular (e.g., "person", "chair", "bottle")
- description: a short visual description (e.g., color/material/shape/context). Must be a NON-empty string; if unsure use "unknown".
- quantity: integer count of visible instances
- coordinates: bounding boxes in pixel coords [x_min, y_min, x_max, y_max], one box per instance
- condition: observable state (e.g., "new", "used", "damaged", "partially occluded", "unknown").
  IMPORTANT: condition MUST be a NON-empty string; if unsure set exactly "unknown" (never empty/null).

Perform a multi-pass visual analysis:
Pass 1: Identify large, central, and foreground objects.
Pass 2: Scan the entire image edge-to-edge for small, background, low-contrast, or partially occluded objects.
Pass 3: Re-check reflective, transparent, and repetitive regions (e.g., shelves, tables, walls, floors).
Pass 4: Verify no detected object category is missing instances.

Self-verification gate BEFORE returning:
- Confirm no small/background object with clear edges was omitted.
- Confirm repeated objects were not undercounted.
- If anything is found, update the object list before returning.

Rules:
- Do not invent details. If uncertain, use "unknown".
- If you cannot provide a box for an instance, omit that instance from coordinates and reduce quantity accordingly.
- Output MUST be valid JSON and MUST follow the exact schema below.
- No markdown. No extra text. No comments. No trailing commas.

Return ONLY this JSON shape:
{
  "image_analysis": {
    "objects": [
      {
        "name": "string",
        "description": "string",
        "quantity": 0,
        "coordinates": [[0,0,0,0]],
        "condition": "string"
      }
    ]
  }
}`

// QuickPrompt asks for a single fast enumeration of everything visible.
// Known inventory names are excluded so repeated scans only surface new
// items.
func QuickPrompt(exclude []string) string {
	prompt := "Identify all objects in the image and list their names. " +
		"For each object, provide description, quantity, coordinates as " +
		"[x_min,y_min,x_max,y_max] in pixels, and condition. " +
		"Return ONLY valid JSON."
	if len(exclude) > 0 {
		prompt += fmt.Sprintf(" Exclude these items: %s.", strings.Join(exclude, ", "))
	}
	return prompt
}

// DeepPrompt builds the high-recall deep-scan prompt. smallOnly selects the
// second-pass variant focused on small/background/edge objects.
func DeepPrompt(smallOnly bool, exclude []string) string {
	prompt := deepPromptBase
	if len(exclude) > 0 {
		prompt += fmt.Sprintf("\n\nExclude these items: %s.", strings.Join(exclude, ", "))
	}
	prompt += "\n\nFavor recall over precision. It is acceptable to include uncertain objects " +
		`with description "unknown" and condition "unknown" rather than omitting them.`
	if smallOnly {
		prompt += "\n\nSecond pass mode: Focus ONLY on small/background/edge/corner objects that might have been missed. " +
			"Do not repeat obvious large foreground objects unless you are adding missing instances/boxes. " +
			"Return the same JSON schema."
	}
	return prompt
}

// RemovePrompt asks which of the currently stored items appear in the
// photo; the model answers with names, quantities and conditions only.
func RemovePrompt(inventory []string) string {
	if len(inventory) > 0 {
		return fmt.Sprintf(`RETURN ONLY VALID JSON. List items to REMOVE. Inventory: %s

FORMAT (copy exactly):
{"items": [{"name": "Item Name", "quantity": 1, "condition": "good"}]}

RULES:
- ONLY JSON, NO text or explanations
- Match item names from inventory list
- Each item needs: name, quantity, condition`, strings.Join(inventory, ", "))
	}
	return `RETURN ONLY VALID JSON. List all items you see.

FORMAT (copy exactly):
{"items": [{"name": "Item Name", "quantity": 1, "condition": "good"}]}

RULES:
- ONLY JSON output, NO explanations
- Include ALL visible items
- Each item: name, quantity (1 if not specified), condition (good/fair/needs replacement)`
}
