package cmd

import (
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	PromptYes           = "Yes"
	PromptNo            = "No"
	PromptNoObservation = "(no observation)"
)

// confirm asks a Yes/No question. Any prompt error counts as No.
func confirm(label string) bool {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return false
	}
	return answer == PromptYes
}

func autoApprove(cmd *cobra.Command) bool {
	yes, _ := cmd.Flags().GetBool("yes")
	return yes
}

// pickObservation lets the evaluator choose one of the posting presets.
// Choosing no observation returns an empty string.
func pickObservation(presets []string) (string, error) {
	items := append([]string{PromptNoObservation}, presets...)

	prompt := promptui.Select{
		Label: "Observation",
		Items: items,
		Size:  len(items),
	}

	_, choice, err := prompt.Run()
	if err != nil {
		return "", err
	}
	if choice == PromptNoObservation {
		return "", nil
	}
	return choice, nil
}
