// Package prompt builds the concept prompt that asks a text model to write
// an image-generation prompt for a YouTube thumbnail.
package prompt

import (
	"fmt"

	"github.com/snappy-loop/thumbnails/internal/models"
)

const conceptTemplate = `You are an expert YouTube thumbnail designer AI. Your task is to generate a single, detailed, and effective prompt for an AI image generator to create a thumbnail for the topic: "%[1]s".

The final image must be clean, professional, high-contrast, and look like a real, high-resolution photo, optimized for a 1280x720 YouTube thumbnail format. The prompt should result in a thumbnail that tells a clear story at a glance and looks instantly recognizable as a professional, top-tier YouTube thumbnail.

A critical part of this thumbnail is the TEXT. The text must be visually dominant, extremely easy to read at a small size, and styled professionally according to the chosen style. Ensure your prompt describes the font, color, outlines, shadows, and placement in great detail.

You MUST strictly adhere to the specific style guidelines for the **'%[2]s'** style provided below:

--- STYLE GUIDELINES for '%[2]s' ---
%[3]s
--- END OF STYLE GUIDELINES ---

Based on a final image generator prompt now.`

// Compose returns the concept prompt for topic in the given style.
// The caller validates topic; an unknown style panics.
func Compose(topic string, style models.Style) string {
	return fmt.Sprintf(conceptTemplate, topic, style, Guidelines(style))
}
