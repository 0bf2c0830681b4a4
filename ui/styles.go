package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	subtleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("203")).Padding(0, 1)
	errorTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	urlStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
)
