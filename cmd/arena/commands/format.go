package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/forecast"
	"github.com/wonny/predictarena/internal/papertrade"
	"github.com/wonny/predictarena/internal/tournament"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED"))

	headerCellStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// PrintHeader prints a titled section header
func PrintHeader(title, date string) {
	fmt.Println()
	fmt.Println(titleStyle.Render(fmt.Sprintf("═══ %s ═══", title)))
	if date != "" {
		fmt.Println(mutedStyle.Render("  date: " + date))
	}
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(successStyle.Render("✅ " + message))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(warningStyle.Render("⚠️  " + message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(errorStyle.Render("❌ " + message))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Println("ℹ️  " + message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintJSON writes v as indented JSON (--json output)
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable builds a bordered table with the shared styles
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

func formatPct(v float64) string {
	return formatFloat(v*100, 1) + "%"
}

func formatOptional(v *float64, places int) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v, places)
}

// LeaderboardTable renders entries in rank order
func LeaderboardTable(lb contracts.Leaderboard) string {
	ranked := forecast.Ranked(lb)
	rows := make([][]string, 0, len(ranked))
	for i, e := range ranked {
		name := e.DisplayName
		if name == "" {
			name = e.ForecasterID
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			name,
			formatFloat(e.TotalScore, 2),
			fmt.Sprintf("%d/%d", e.CorrectDirections, e.TotalPredictions),
			formatPct(e.DirectionAccuracy),
			strconv.Itoa(e.CurrentStreak),
			strconv.Itoa(e.BestStreak),
			strconv.Itoa(e.WorstStreak),
		})
	}
	return renderTable(
		[]string{"#", "Forecaster", "Score", "Correct", "Accuracy", "Streak", "Best", "Worst"},
		rows,
	)
}

// IngestTable renders per-forecaster ingest outcomes
func IngestTable(res tournament.IngestResult) string {
	rows := make([][]string, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		rows = append(rows, []string{
			o.Forecaster,
			o.Status,
			strconv.Itoa(o.Submitted),
			strconv.Itoa(o.Usable),
			strconv.Itoa(o.Violations),
			o.Error,
		})
	}
	return renderTable(
		[]string{"Forecaster", "Status", "Submitted", "Usable", "Violations", "Error"},
		rows,
	)
}

// TradesTable renders the trade history, newest last
func TradesTable(trades []contracts.Trade) string {
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			t.DateOpened,
			t.Ticker,
			string(t.Direction),
			strconv.FormatInt(t.Shares, 10),
			formatFloat(t.EntryPrice, 2),
			formatOptional(t.ExitPrice, 2),
			formatOptional(t.PnL, 2),
			string(t.Status),
		})
	}
	return renderTable(
		[]string{"Opened", "Ticker", "Dir", "Shares", "Entry", "Exit", "P&L", "Status"},
		rows,
	)
}

// PrintWinner prints a consensus pick (or its absence)
func PrintWinner(pick *contracts.WinnerPick) {
	if pick == nil {
		PrintWarning("No consensus winner (quorum not reached)")
		return
	}
	PrintKeyValue("Ticker", pick.Ticker, 14)
	PrintKeyValue("Direction", string(pick.Direction), 14)
	PrintKeyValue("Forecasters", fmt.Sprintf("%d %v", pick.ModelCount, pick.Forecasters), 14)
	PrintKeyValue("Confidence", formatPct(pick.AvgConfidence), 14)
	PrintKeyValue("Entry/Target", formatFloat(pick.AvgEntry, 2)+" -> "+formatFloat(pick.AvgTarget, 2), 14)
	PrintKeyValue("Expected move", formatFloat(pick.ExpectedMovePct, 2)+"%", 14)
	PrintKeyValue("Score", formatFloat(pick.Score, 4), 14)
	if pick.HighConviction {
		fmt.Println(successStyle.Render("   ★ high conviction"))
	}
}

// PrintTrade prints a single trade
func PrintTrade(label string, t *contracts.Trade) {
	if t == nil {
		return
	}
	line := fmt.Sprintf("%s %s %s x%d @ %s", label, t.Direction, t.Ticker, t.Shares, formatFloat(t.EntryPrice, 2))
	if t.ExitPrice != nil {
		line += fmt.Sprintf(" -> %s (P&L %s, %s%%)",
			formatFloat(*t.ExitPrice, 2), formatOptional(t.PnL, 2), formatOptional(t.PnLPct, 2))
	}
	PrintInfo(line)
}

// PrintSimulator prints the account summary
func PrintSimulator(state contracts.SimulatorState) {
	sum := papertrade.Summarize(state)
	PrintKeyValue("Balance", formatFloat(sum.Balance, 2), 12)
	PrintKeyValue("Total P&L", fmt.Sprintf("%s (%s%%)", formatFloat(sum.TotalPnL, 2), formatFloat(sum.TotalPnLPct, 2)), 12)
	PrintKeyValue("Closed", strconv.Itoa(sum.Closed), 12)
	PrintKeyValue("Win rate", formatPct(sum.WinRate), 12)
	if sum.Open != nil {
		PrintTrade("Open:", sum.Open)
	}
}
