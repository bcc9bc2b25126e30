package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"empty extraction passes through",
			"No text could be extracted from the PDF (processed 3 pages). The PDF might be image-based (scanned) or encrypted. Please ensure the PDF contains selectable text.",
			"No text could be extracted from the PDF (processed 3 pages). The PDF might be image-based (scanned) or encrypted. Please ensure the PDF contains selectable text.",
		},
		{
			"extraction failure gets guidance",
			"Failed to extract PDF text: broken xref",
			"Error extracting text: Failed to extract PDF text: broken xref. The file might be corrupted or in an unsupported format.",
		},
		{
			"word extraction failure gets guidance",
			"Failed to extract Word text: zip: not a valid zip file",
			"Error extracting text: Failed to extract Word text: zip: not a valid zip file. The file might be corrupted or in an unsupported format.",
		},
		{
			"anything else is generic",
			"permission denied",
			"Error processing file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, pipelineError(errors.New(tt.in)), tt.want)
		})
	}
}
