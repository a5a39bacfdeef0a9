package ocr

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
)

// VisionExtractor holds a gRPC connection that command teardown must release.
var _ io.Closer = (*VisionExtractor)(nil)

// stubAnnotator returns canned Vision API responses.
type stubAnnotator struct {
	imageText string
	imageErr  error
	closed    bool
}

func (s *stubAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	if s.imageErr != nil {
		return nil, s.imageErr
	}
	if len(req.Requests) != 1 || req.Requests[0].Features[0].Type != visionpb.Feature_DOCUMENT_TEXT_DETECTION {
		return nil, errors.New("unexpected request shape")
	}
	resp := &visionpb.AnnotateImageResponse{}
	if s.imageText != "" {
		resp.FullTextAnnotation = &visionpb.TextAnnotation{Text: s.imageText}
	}
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{resp},
	}, nil
}

func (s *stubAnnotator) BatchAnnotateFiles(_ context.Context, _ *visionpb.BatchAnnotateFilesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error) {
	return &visionpb.BatchAnnotateFilesResponse{}, nil
}

func (s *stubAnnotator) Close() error {
	s.closed = true
	return nil
}

func TestVisionExtractText_Image(t *testing.T) {
	v := &VisionExtractor{client: &stubAnnotator{imageText: "PAY TO THE ORDER OF John Smith\n#4521\n"}}

	result, err := v.ExtractText(context.Background(), tempImage(t, "check.jpg"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != "vision" {
		t.Errorf("method = %q, want vision", result.Method)
	}
	if result.Text != "PAY TO THE ORDER OF John Smith\n#4521\n" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestVisionExtractText_NoAnnotationIsNoText(t *testing.T) {
	v := &VisionExtractor{client: &stubAnnotator{}}

	_, err := v.ExtractText(context.Background(), tempImage(t, "blank.jpg"))
	if !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

func TestVisionExtractText_APIFailure(t *testing.T) {
	v := &VisionExtractor{client: &stubAnnotator{imageErr: errors.New("rpc error")}}

	_, err := v.ExtractText(context.Background(), tempImage(t, "check.jpg"))
	if !errors.Is(err, ErrOCRFailed) {
		t.Errorf("err = %v, want ErrOCRFailed", err)
	}
}

func TestVisionExtractText_MissingPDFHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	v := &VisionExtractor{client: &stubAnnotator{}}

	_, err := v.ExtractText(context.Background(), path)
	if !errors.Is(err, ErrInvalidPDF) {
		t.Errorf("err = %v, want ErrInvalidPDF", err)
	}
}

func TestVisionClose(t *testing.T) {
	stub := &stubAnnotator{}
	v := &VisionExtractor{client: stub}
	if err := v.Close(); err != nil {
		t.Fatal(err)
	}
	if !stub.closed {
		t.Error("underlying client was not closed")
	}
}
