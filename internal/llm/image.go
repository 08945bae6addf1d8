package llm

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	unifiedgenai "google.golang.org/genai"
)

var errImageModelUnavailable = errors.New("image model is not initialized")

// GenerateImages generates images for prompt. Imagen models go through the unified SDK's
// GenerateImages with cfg applied; native Gemini image models go through generateContent
// with IMAGE modality and return at most one image.
// A response without images is not an error: the returned slice is empty.
func (c *Client) GenerateImages(ctx context.Context, prompt string, cfg ImageConfig) ([]Image, error) {
	log.Debug().
		Str("model", c.modelImage).
		Str("prompt", preview(prompt, 50)).
		Int("number_of_images", cfg.NumberOfImages).
		Str("aspect_ratio", cfg.AspectRatio).
		Msg("Generating image")

	if isImagenModel(c.modelImage) {
		if c.unifiedClient == nil {
			return nil, errImageModelUnavailable
		}
		return c.generateImagen(ctx, prompt, cfg)
	}
	if c.genaiClient == nil {
		return nil, errImageModelUnavailable
	}
	return c.generateNative(ctx, prompt, cfg)
}

func (c *Client) generateImagen(ctx context.Context, prompt string, cfg ImageConfig) ([]Image, error) {
	resp, err := c.unifiedClient.Models.GenerateImages(ctx, c.modelImage, prompt, &unifiedgenai.GenerateImagesConfig{
		NumberOfImages: int32(cfg.NumberOfImages),
		OutputMIMEType: cfg.OutputMIMEType,
		AspectRatio:    cfg.AspectRatio,
	})
	if err != nil {
		log.Error().Err(err).
			Str("model", c.modelImage).
			Str("prompt_preview", preview(prompt, 80)).
			Msg("Imagen generation failed")
		return nil, err
	}

	images := make([]Image, 0, len(resp.GeneratedImages))
	for i, generated := range resp.GeneratedImages {
		img := Image{Model: c.modelImage, MimeType: cfg.OutputMIMEType}
		if generated != nil && generated.Image != nil {
			img.Data = generated.Image.ImageBytes
			if generated.Image.MIMEType != "" {
				img.MimeType = generated.Image.MIMEType
			}
		}
		if generated != nil && generated.RAIFilteredReason != "" {
			log.Warn().
				Int("image", i).
				Str("reason", generated.RAIFilteredReason).
				Msg("Imagen filtered image")
		}
		images = append(images, img)
	}

	logGeminiResponse("GenerateImages", fmt.Sprintf("images=%d", len(images)))
	return images, nil
}

// generateNative calls a Gemini image model with an image prompt and collects image blobs
// from the first candidate that has one. cfg.NumberOfImages and cfg.AspectRatio are not
// supported by generateContent; the output is resized downstream.
func (c *Client) generateNative(ctx context.Context, prompt string, cfg ImageConfig) ([]Image, error) {
	model := c.genaiClient.GenerativeModel(c.modelImage)
	setResponseModality(model, []string{"IMAGE"})

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).
			Str("model", c.modelImage).
			Str("prompt_preview", preview(prompt, 80)).
			Msg("Gemini image generation failed")
		return nil, err
	}

	logGeminiResponse("GenerateImages", fmt.Sprintf("candidates=%d", len(resp.Candidates)))
	for i, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for j, part := range cand.Content.Parts {
			blob, ok := part.(genai.Blob)
			if !ok {
				continue
			}
			log.Info().
				Str("caller", "GenerateImages").
				Int("image_size_bytes", len(blob.Data)).
				Str("mime_type", blob.MIMEType).
				Int("candidate", i).
				Int("part", j).
				Msg("Gemini response (image blob)")
			mimeType := blob.MIMEType
			if mimeType == "" {
				mimeType = cfg.OutputMIMEType
			}
			return []Image{{Data: blob.Data, MimeType: mimeType, Model: c.modelImage}}, nil
		}
	}

	log.Warn().
		Str("model", c.modelImage).
		Int("candidates", len(resp.Candidates)).
		Msg("No image blob in Gemini response")
	return nil, nil
}

// setResponseModality sets model.ResponseModality when the genai SDK exposes it.
// Uses reflection so it no-ops on SDK versions that don't have the field.
func setResponseModality(model *genai.GenerativeModel, modalities []string) {
	v := reflect.ValueOf(model).Elem()
	f := v.FieldByName("ResponseModality")
	if !f.IsValid() || !f.CanSet() {
		log.Debug().Msg("ResponseModality not available on GenerativeModel")
		return
	}
	if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
		f.Set(reflect.ValueOf(modalities))
	}
}
