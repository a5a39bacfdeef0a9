package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// maxVisionFileSize is the Vision API limit for synchronous inline processing (20MB).
const maxVisionFileSize = 20 * 1024 * 1024

// annotatorAPI is the slice of the Vision client this package uses,
// stubbed in tests.
type annotatorAPI interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	BatchAnnotateFiles(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error)
	Close() error
}

// VisionExtractor implements TextExtractor using the Google Cloud Vision API.
type VisionExtractor struct {
	client annotatorAPI
}

// NewVisionExtractor creates the Vision backend with credentials from the
// environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON, falling back to Application Default Credentials.
func NewVisionExtractor(ctx context.Context) (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionExtractor{client: client}, nil
}

// ExtractText sends the file to the Vision API and returns the recognized text.
func (v *VisionExtractor) ExtractText(ctx context.Context, path string) (*Result, error) {
	const op = "ExtractText"
	start := time.Now()

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(op, err, path)
	}
	if len(data) > maxVisionFileSize {
		return nil, NewError(op, ErrOCRFailed, fmt.Sprintf("file size %d exceeds the 20MB Vision limit", len(data)))
	}

	var result *Result
	if format == FormatPDF {
		result, err = v.annotatePDF(ctx, data)
	} else {
		result, err = v.annotateImage(ctx, data)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, NewError(op, ErrNoText, path)
	}

	result.ProcessedAt = time.Now()
	result.Duration = result.ProcessedAt.Sub(start)
	return result, nil
}

func (v *VisionExtractor) annotateImage(ctx context.Context, data []byte) (*Result, error) {
	const op = "annotateImage"

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, NewError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, NewError(op, ErrOCRFailed, "no response from Vision API")
	}

	imgResp := resp.Responses[0]
	if imgResp.Error != nil {
		return nil, NewError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", imgResp.Error.Message))
	}
	if imgResp.FullTextAnnotation == nil {
		return &Result{Pages: 1, Method: "vision"}, nil
	}

	return &Result{
		Text:   imgResp.FullTextAnnotation.Text,
		Pages:  1,
		Method: "vision",
	}, nil
}

func (v *VisionExtractor) annotatePDF(ctx context.Context, data []byte) (*Result, error) {
	const op = "annotatePDF"

	// Validate PDF header before the round trip.
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, NewError(op, ErrInvalidPDF, "missing PDF header")
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, NewError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, NewError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, NewError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	var b strings.Builder
	for _, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, NewError(op, ErrOCRFailed, fmt.Sprintf("page error: %s", page.Error.Message))
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(page.FullTextAnnotation.Text)
	}

	return &Result{
		Text:   b.String(),
		Pages:  len(fileResp.Responses),
		Method: "vision",
	}, nil
}

// Close closes the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
