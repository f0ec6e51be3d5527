// Package color provides the terminal color theme for flewid's command line
// output.
//
// Colors are lipgloss adaptive colors, so the same style renders legibly on
// dark and light backgrounds. Styles are grouped by meaning:
//   - Primary: headings
//   - Success: valid results
//   - Warning: unresolved references and other non-fatal findings
//   - Error: failures and error kinds
//   - Muted: de-emphasized text
//
// # Environment Variables
//
//   - NO_COLOR: disable all styling
//   - FLEWID_THEME: force the dark or light palette
//
// # Usage Example
//
//	fmt.Println(color.Render(color.TitleStyle, "Template"))
//	fmt.Println(color.Render(color.ErrorStyle, "VariableValidationFailed"))
package color
