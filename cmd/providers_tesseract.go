//go:build tesseract

package cmd

import (
	"github.com/lehigh-university-libraries/capread/internal/config"
	"github.com/lehigh-university-libraries/capread/pkg/providers"
	"github.com/lehigh-university-libraries/capread/pkg/tesseract"
)

func init() {
	providerFactories["tesseract"] = func(c *config.Config) providers.Provider {
		return tesseract.New(c.Tesseract.Language)
	}
}
