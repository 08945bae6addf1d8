package llm

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/api/option"
	unifiedgenai "google.golang.org/genai"
)

// maxGeminiResponseLogBytes is the max length of a Gemini response body to log in full (to avoid huge logs).
const maxGeminiResponseLogBytes = 8192

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint (e.g. http://host.docker.internal:31300/gemini).
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil || base.Scheme == "" || base.Host == "" {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid GEMINI_API_ENDPOINT, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.URL.Path = path.Join(e.base.Path, strings.TrimPrefix(req.URL.Path, "/"))
	if req.URL.RawQuery != "" {
		req2.URL.RawQuery = req.URL.RawQuery
	}
	return e.next.RoundTrip(req2)
}

// logGeminiResponse logs Gemini response text, truncating if over maxGeminiResponseLogBytes.
func logGeminiResponse(caller, raw string) {
	if len(raw) <= maxGeminiResponseLogBytes {
		log.Info().Str("caller", caller).Str("gemini_response", raw).Msg("Gemini response")
		return
	}
	log.Info().
		Str("caller", caller).
		Str("gemini_response", raw[:maxGeminiResponseLogBytes]+"... [truncated]").
		Int("gemini_response_len", len(raw)).
		Msg("Gemini response")
}

// Client wraps the Gemini text and image models used to build a thumbnail
type Client struct {
	apiKey        string
	modelConcept  string               // text model that writes the image prompt, e.g. gemini-2.5-pro
	modelImage    string               // imagen-4.0-generate-001 or a native gemini image model
	llmConcept    llms.Model           // langchaingo text model
	unifiedClient *unifiedgenai.Client // unified genai SDK for Imagen
	genaiClient   *genai.Client        // legacy SDK for native Gemini image output
}

// ImageConfig is the output configuration passed to the image model
type ImageConfig struct {
	NumberOfImages int
	OutputMIMEType string
	AspectRatio    string
}

// Image is one image returned by the image model. Data may be empty when the
// provider returned an entry without bytes (e.g. filtered output).
type Image struct {
	Data     []byte
	MimeType string
	Model    string
}

// NewClient creates a new Gemini client.
// apiKey may be empty: the client is still returned but HasAPIKey reports false and no SDK client is built.
// apiEndpoint: optional Gemini API base URL; when set, all Gemini calls use this endpoint.
func NewClient(apiKey, modelConcept, modelImage, apiEndpoint string) *Client {
	if modelConcept == "" {
		modelConcept = "gemini-2.5-pro"
	}
	if modelImage == "" {
		modelImage = "imagen-4.0-generate-001"
	}

	c := &Client{
		apiKey:       apiKey,
		modelConcept: modelConcept,
		modelImage:   modelImage,
	}
	if apiKey == "" {
		log.Warn().Msg("No Gemini API key configured; thumbnail generation will fail until one is set")
		return c
	}

	var err error

	// Optional custom HTTP client for langchaingo when using a custom endpoint
	conceptOpts := []googleai.Option{googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(modelConcept)}
	if apiEndpoint != "" {
		if httpClient := httpClientForEndpoint(apiEndpoint); httpClient != nil {
			conceptOpts = append(conceptOpts, googleai.WithHTTPClient(httpClient))
		}
	}
	c.llmConcept, err = googleai.New(context.Background(), conceptOpts...)
	if err != nil {
		log.Error().Err(err).Str("model", modelConcept).Msg("Failed to initialize concept model")
	}

	if isImagenModel(modelImage) {
		unifiedCfg := &unifiedgenai.ClientConfig{APIKey: apiKey, Backend: unifiedgenai.BackendGeminiAPI}
		if apiEndpoint != "" {
			unifiedCfg.HTTPOptions = unifiedgenai.HTTPOptions{BaseURL: apiEndpoint}
		}
		c.unifiedClient, err = unifiedgenai.NewClient(context.Background(), unifiedCfg)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize unified genai client for Imagen")
		}
	} else {
		genaiOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
		if apiEndpoint != "" {
			genaiOpts = append(genaiOpts, option.WithEndpoint(apiEndpoint))
		}
		c.genaiClient, err = genai.NewClient(context.Background(), genaiOpts...)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize genai client for native image generation")
		}
	}

	log.Info().
		Str("model_concept", modelConcept).
		Str("model_image", modelImage).
		Str("api_endpoint", apiEndpoint).
		Bool("concept_model", c.llmConcept != nil).
		Bool("imagen_client", c.unifiedClient != nil).
		Bool("genai_client", c.genaiClient != nil).
		Msg("LLM client initialized")

	return c
}

// HasAPIKey reports whether a credential was configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Close releases the legacy genai client, if any.
func (c *Client) Close() error {
	if c.genaiClient != nil {
		return c.genaiClient.Close()
	}
	return nil
}

// isImagenModel reports whether model is served by the Imagen predict API rather than generateContent.
func isImagenModel(model string) bool {
	return strings.HasPrefix(model, "imagen-")
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
