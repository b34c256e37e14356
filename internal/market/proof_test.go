package market

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gigbite/backend/internal/models"
)

func schemasDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "schemas")
}

func newTestValidator(t *testing.T) *ProofValidator {
	t.Helper()
	v, err := NewProofValidator(schemasDir(t))
	if err != nil {
		t.Fatalf("NewProofValidator: %v", err)
	}
	return v
}

func TestProofValidator_KnowsAllCategories(t *testing.T) {
	v := newTestValidator(t)

	for _, category := range []string{
		models.CategorySocialShare,
		models.CategoryAppReview,
		models.CategorySurvey,
		models.CategoryContentWriting,
	} {
		if !v.Known(category) {
			t.Errorf("category %q should have a schema", category)
		}
	}
	if v.Known("mow_lawns") {
		t.Error("unregistered category should not be known")
	}
}

func TestProofValidator_Validate(t *testing.T) {
	v := newTestValidator(t)

	cases := []struct {
		name     string
		category string
		proof    string
		wantErr  error
	}{
		{"valid social share", models.CategorySocialShare, `{"post_url":"https://x.com/p/1","platform":"x"}`, nil},
		{"missing post_url", models.CategorySocialShare, `{"platform":"x"}`, ErrInvalidProof},
		{"extra field rejected", models.CategorySocialShare, `{"post_url":"https://x.com/p/1","note":"hi"}`, ErrInvalidProof},
		{"valid app review", models.CategoryAppReview, `{"review_url":"https://store.example/r/9","rating":5}`, nil},
		{"rating out of range", models.CategoryAppReview, `{"review_url":"https://store.example/r/9","rating":6}`, ErrInvalidProof},
		{"valid survey", models.CategorySurvey, `{"completion_code":"ABCD123"}`, nil},
		{"valid content writing", models.CategoryContentWriting, `{"document_url":"https://docs.example/d/1","word_count":800}`, nil},
		{"empty proof", models.CategorySurvey, ``, ErrInvalidProof},
		{"malformed json", models.CategorySurvey, `{"completion_code":`, ErrInvalidProof},
		{"unknown category", "mow_lawns", `{}`, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.category, json.RawMessage(tc.proof))
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected valid, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}
}
