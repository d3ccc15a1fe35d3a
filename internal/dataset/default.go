package dataset

import (
	"fmt"
	"os"

	"github.com/demandcast/backend/internal/models"
)

// LoadDefaultDataset reads the bundled demand/inventory CSV from disk.
// A missing file is not an error condition for callers that can run in
// upload-only mode, so it is reported distinctly via os.IsNotExist.
func LoadDefaultDataset(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("default dataset %s: %w", path, err)
	}
	return ds, nil
}
