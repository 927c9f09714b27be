package service

import (
	"context"
	"fmt"

	"smart_toll/internal/domain"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	log "github.com/sirupsen/logrus"
)

// TextRecognizer is the OCR capability: image bytes in, ordered text tokens out.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) ([]domain.OCRToken, error)
}

// RekognitionAPI is the slice of the Rekognition client the OCR adapter needs.
type RekognitionAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

type RekognitionOCR struct {
	client        RekognitionAPI
	minConfidence float32
}

func NewRekognitionOCR(client RekognitionAPI, minConfidence float32) *RekognitionOCR {
	return &RekognitionOCR{client: client, minConfidence: minConfidence}
}

// RecognizeText keeps LINE detections in the order Rekognition returns them.
func (s *RekognitionOCR) RecognizeText(ctx context.Context, image []byte) ([]domain.OCRToken, error) {
	if s.client == nil {
		return nil, fmt.Errorf("rekognition client not initialised")
	}

	result, err := s.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		log.Printf("OCR: DetectText failed: %v", err)
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	tokens := make([]domain.OCRToken, 0, len(result.TextDetections))
	for _, td := range result.TextDetections {
		if td.Type != types.TextTypesLine || td.DetectedText == nil {
			continue
		}
		var conf float32
		if td.Confidence != nil {
			conf = *td.Confidence
		}
		if conf < s.minConfidence {
			log.Debugf("OCR: dropping '%s' (confidence %.2f)", *td.DetectedText, conf)
			continue
		}
		tokens = append(tokens, domain.OCRToken{Text: *td.DetectedText, Confidence: conf})
	}
	log.Printf("OCR: Rekognition returned %d line(s)", len(tokens))
	return tokens, nil
}
