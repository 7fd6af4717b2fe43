package department

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirulhaziq/inspectable-backend/utils"
)

func TestBulkImportLimits(t *testing.T) {
	svc := NewService(nil, NewImporter(newMockImportStore()), t.TempDir())

	t.Run("no files", func(t *testing.T) {
		_, err := svc.BulkImport(nil, false)
		assert.ErrorIs(t, err, ErrNoFiles)
	})

	t.Run("batch over the aggregate ceiling is rejected", func(t *testing.T) {
		// Only Size is read before the batch check fires.
		files := []*multipart.FileHeader{
			{Filename: "bahagian-a.xlsx", Size: 30 << 20},
			{Filename: "bahagian-b.xlsx", Size: 30 << 20},
		}
		result, err := svc.BulkImport(files, false)
		require.ErrorIs(t, err, utils.ErrBatchTooLarge)
		assert.Nil(t, result)
	})
}
