package prompt

import "github.com/snappy-loop/thumbnails/internal/models"

type styleDef struct {
	name        string
	description string
	guidelines  string
}

// styleTable is never written after package init.
var styleTable = map[models.Style]styleDef{
	models.StyleMrBeast: {
		name:        "MrBeast",
		description: "High-energy, bold, and vibrant.",
		guidelines: `
- **Overall Vibe:** High-energy, exciting, and impossible to ignore. A "larger than life" feel.
- **Composition:** A central, expressive human subject, often with a shocked, amazed, or joyful face. Action-oriented.
- **Color & Lighting:** Extremely vibrant, saturated colors. High contrast. Cinematic, bright lighting with a glow effect on the subject to make them pop.
- **Text Style:** Massive, bold, 3D-extruded font (e.g., Bebas Neue, Impact). Text MUST have a thick, contrasting outline (e.g., white or black), an inner glow, and a heavy, deep drop shadow to create a strong 3D effect. The letters can have a subtle color gradient. 2-4 word MAX. Example: "I DID IT!" or "CRAZY EXPENSIVE".
`,
	},
	models.StyleMinimalist: {
		name:        "Minimalist",
		description: "Clean, simple, and elegant.",
		guidelines: `
- **Overall Vibe:** Clean, elegant, modern, and professional. Focus on clarity and simplicity.
- **Composition:** Lots of negative space. A single, well-lit object or a person with a neutral or thoughtful expression. Uncluttered background, often a simple gradient or solid color.
- **Color & Lighting:** A limited, sophisticated color palette (2-3 colors). Often monochromatic with one accent color. Soft, studio-like lighting. No harsh shadows.
- **Text Style:** The text is a primary design element. It must be perfectly kerned and aligned, often using a premium sans-serif font like 'Montserrat' or 'Gilroy'. No outlines or heavy shadows; focus on sharp, clean letterforms. The text should have ample breathing room. Can be title-cased. Example: "The Future of Laptops" or "My Simple Desk Setup".
`,
	},
	models.StyleVlog: {
		name:        "Vlog",
		description: "Candid, authentic, and personal.",
		guidelines: `
- **Overall Vibe:** Authentic, personal, and "in-the-moment". Feels like a snapshot from a real-life experience.
- **Composition:** Often a first-person perspective or a candid shot of the creator in a real-world environment. Can be slightly imperfect to feel more genuine.
- **Color & Lighting:** Natural, realistic lighting that matches the environment (e.g., sunny outdoors, cozy indoor). Colors are true-to-life, maybe slightly enhanced.
- **Text Style:** Looks like an authentic, friendly subtitle. It should be perfectly readable, often achieved with white text having a very subtle, soft drop shadow or placed on a semi-transparent black bar at the bottom of the thumbnail. Can use a friendly, slightly rounded sans-serif or even a clean handwritten font. Example: "a new chapter begins" or "the best coffee in New York".
`,
	},
	models.StyleDocumentary: {
		name:        "Documentary",
		description: "Cinematic, moody, and professional.",
		guidelines: `
- **Overall Vibe:** Cinematic, serious, and high-quality. Evokes curiosity and tells a deeper story.
- **Composition:** Follows cinematic principles like the rule of thirds. Can feature dramatic landscapes, detailed close-ups, or powerful portraits.
- **Color & Lighting:** Moody, atmospheric lighting. Often uses color grading to set a tone (e.g., cool blues for a tech doc, warm tones for a historical one). High dynamic range.
- **Text Style:** Text must look like a professional film title. Use elegant serif (like 'Garamond') or clean sans-serif fonts ('Proxima Nova'). The text should have a subtle cinematic effect, like a faint outer glow or a very soft, diffused drop shadow to lift it from the background without being distracting. Placement is critical, usually in the lower third. Example: "The Rise of an Empire" or "Secrets of the Deep".
`,
	},
}

// Guidelines returns the instruction block registered for style.
// It panics on a style outside models.Styles.
func Guidelines(style models.Style) string {
	return mustStyle(style).guidelines
}

// StyleInfos returns the public style list in display order.
func StyleInfos() []models.StyleInfo {
	out := make([]models.StyleInfo, 0, len(models.Styles))
	for _, style := range models.Styles {
		def := mustStyle(style)
		out = append(out, models.StyleInfo{ID: style, Name: def.name, Description: def.description})
	}
	return out
}

func mustStyle(style models.Style) styleDef {
	def, ok := styleTable[style]
	if !ok {
		panic("prompt: unknown style " + string(style))
	}
	return def
}
