package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/calepin/calepin/internal/config"
)

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func main() {
	// Create a config with defaults applied
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("Error generating YAML: %v", err)))
		os.Exit(1)
	}

	header := "# Calepin Configuration Example\n# Copy this file to calepin.yaml and customize as needed\n\n"
	output := header + string(yamlData)

	outputFile := "calepin.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	err = os.WriteFile(outputFile, []byte(output), 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf(config.ErrWriteConfigContentFmt, err)))
		os.Exit(1)
	}
	fmt.Println(okStyle.Render("Generated example config: " + outputFile))
}
