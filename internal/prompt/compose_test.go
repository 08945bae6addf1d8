package prompt

import (
	"strings"
	"testing"

	"github.com/snappy-loop/thumbnails/internal/models"
)

func TestCompose_ContainsTopicAndOwnGuidelines(t *testing.T) {
	const topic = "I Survived 7 Days in the Jungle"

	for _, style := range models.Styles {
		t.Run(string(style), func(t *testing.T) {
			got := Compose(topic, style)

			if !strings.Contains(got, `"`+topic+`"`) {
				t.Errorf("prompt does not contain topic verbatim:\n%s", got)
			}
			if !strings.Contains(got, Guidelines(style)) {
				t.Errorf("prompt does not contain the %s guidelines", style)
			}
			if !strings.Contains(got, "--- STYLE GUIDELINES for '"+string(style)+"' ---") {
				t.Errorf("prompt does not name style %s in the guideline header", style)
			}
			for _, other := range models.Styles {
				if other == style {
					continue
				}
				if strings.Contains(got, Guidelines(other)) {
					t.Errorf("prompt for %s contains guidelines of %s", style, other)
				}
			}
		})
	}
}

func TestCompose_Deterministic(t *testing.T) {
	a := Compose("desk setup", models.StyleMinimalist)
	b := Compose("desk setup", models.StyleMinimalist)
	if a != b {
		t.Error("Compose is not deterministic")
	}
}

func TestCompose_MrBeastBlock(t *testing.T) {
	got := Compose("I Survived 7 Days in the Jungle", models.StyleMrBeast)
	if !strings.Contains(got, "3D-extruded font") {
		t.Errorf("MrBeast prompt missing its text-style rule:\n%s", got)
	}
	if !strings.Contains(got, "1280x720") {
		t.Error("prompt does not mention the target resolution")
	}
	if !strings.HasSuffix(got, "--- END OF STYLE GUIDELINES ---\n\nBased on a final image generator prompt now.") {
		t.Errorf("prompt has unexpected ending:\n%s", got[len(got)-120:])
	}
}

func TestCompose_UnknownStylePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown style")
		}
	}()
	Compose("topic", models.Style("Anime"))
}

func TestGuidelines_DistinctPerStyle(t *testing.T) {
	seen := make(map[string]models.Style)
	for _, style := range models.Styles {
		g := Guidelines(style)
		if strings.TrimSpace(g) == "" {
			t.Errorf("%s has empty guidelines", style)
		}
		if prev, ok := seen[g]; ok {
			t.Errorf("%s shares guidelines with %s", style, prev)
		}
		seen[g] = style
	}
}

func TestStyleInfos(t *testing.T) {
	infos := StyleInfos()
	if len(infos) != len(models.Styles) {
		t.Fatalf("got %d styles, want %d", len(infos), len(models.Styles))
	}
	for i, info := range infos {
		if info.ID != models.Styles[i] {
			t.Errorf("infos[%d].ID = %s, want %s", i, info.ID, models.Styles[i])
		}
		if info.Name == "" || info.Description == "" {
			t.Errorf("infos[%d] incomplete: %+v", i, info)
		}
	}
}
