package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/andisab/mise-en-place/cmd/mep"
	"github.com/andisab/mise-en-place/pkg/ui/styles"
)

func main() {
	rootCmd := mep.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// The report has already been rendered
		var exitErr *mep.ExitError
		if stderrors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(mep.ExitTotalFailure)
	}
}
