package service

import (
	"context"
	"fmt"

	"smart_toll/internal/camera"
	"smart_toll/internal/domain"

	log "github.com/sirupsen/logrus"
)

type FrameCapturer interface {
	Capture(ctx context.Context) (*camera.Frame, error)
}

// PlateRecognizer turns one camera frame into a canonical plate key.
type PlateRecognizer struct {
	camera FrameCapturer
	ocr    TextRecognizer
}

func NewPlateRecognizer(cam FrameCapturer, ocr TextRecognizer) *PlateRecognizer {
	return &PlateRecognizer{camera: cam, ocr: ocr}
}

// Recognize captures a single frame, runs OCR on it and normalizes the tokens.
// The frame is released before returning on every path.
func (r *PlateRecognizer) Recognize(ctx context.Context) (string, error) {
	frame, err := r.camera.Capture(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCapture, err)
	}
	tokens, err := r.recognizeFrame(ctx, frame)
	if err != nil {
		return "", err
	}
	return r.keyFromTokens(tokens)
}

// RecognizeImage normalizes an uploaded image; used when an owner registers a plate.
func (r *PlateRecognizer) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	frame := &camera.Frame{Data: image}
	tokens, err := r.recognizeFrame(ctx, frame)
	if err != nil {
		return "", err
	}
	return r.keyFromTokens(tokens)
}

func (r *PlateRecognizer) recognizeFrame(ctx context.Context, frame *camera.Frame) ([]domain.OCRToken, error) {
	defer frame.Release()
	tokens, err := r.ocr.RecognizeText(ctx, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: ocr: %v", domain.ErrNetwork, err)
	}
	return tokens, nil
}

func (r *PlateRecognizer) keyFromTokens(tokens []domain.OCRToken) (string, error) {
	texts := domain.TokenTexts(tokens)
	key, err := FormatPlateKey(texts)
	if err != nil {
		log.Printf("PlateRecognizer: %v (tokens: %q)", err, texts)
		return "", err
	}
	log.Printf("PlateRecognizer: recognized plate key '%s'", key)
	return key, nil
}
