package report

import (
	"encoding/json"
	"os"

	"github.com/SunXiangyuNico/OSS-Guardian/pkg/models"
)

// generateJSON writes the full project results as indented JSON
func (g *Generator) generateJSON(results *models.ProjectResults, outputFile string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(outputFile, data, 0644)
}
