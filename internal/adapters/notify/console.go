package notify

// Renderiza resultados de backtest y snapshots del portfolio en consola.
// Implementa ports.Notifier.

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/adelgadom/papertrade/internal/domain"
)

// Console implementa ports.Notifier escribiendo tablas a un io.Writer.
type Console struct {
	out   io.Writer
	table bool // tabla completa vs resumen compacto de 1 línea
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyBacktest imprime el resultado de un run.
func (c *Console) NotifyBacktest(_ context.Context, result domain.BacktestResult) error {
	m := result.Metrics

	if !c.table {
		fmt.Fprintf(c.out, "[%s] %s %s: trades:%d ret:%+.2f%% dd:%.2f%% sharpe:%.2f final:$%.2f\n",
			time.Now().Format("15:04:05"), result.Symbol, result.BarSize,
			len(result.Trades), m.TotalReturnPct, m.MaxDrawdownPct, m.SharpeRatio, m.FinalBalance)
		return nil
	}

	fmt.Fprintf(c.out, "\n=== BACKTEST %s (%s, %d bars, run %s) ===\n",
		result.Symbol, result.BarSize, len(result.Bars), shortID(result.RunID))

	c.printTrades(result.Trades)
	c.printMetrics(result.InitialBalance, m)
	return nil
}

// NotifySnapshot imprime la valoración actual del portfolio.
func (c *Console) NotifySnapshot(_ context.Context, snap domain.ValuationSnapshot) error {
	if len(snap.Holdings) == 0 {
		fmt.Fprintf(c.out, "\n  (no holdings)  balance: $%s\n\n", snap.DemoBalance.StringFixed(2))
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Ticker", "Shares", "Cost basis", "Price", "Value", "Change")

	for _, h := range snap.Holdings {
		table.Append(
			h.Ticker,
			fmt.Sprintf("%d", h.Shares),
			fmt.Sprintf("$%s", h.CostBasis.StringFixed(2)),
			fmt.Sprintf("$%s", h.Price.StringFixed(2)),
			fmt.Sprintf("$%s", h.Value.StringFixed(2)),
			fmt.Sprintf("%+.2f%%", h.ChangePct),
		)
	}
	table.Render()

	change := "N/A"
	if snap.TotalChangePct != nil {
		change = fmt.Sprintf("%+.2f%%", *snap.TotalChangePct)
	}
	fmt.Fprintf(c.out, "  balance: $%s  total value: $%s  total change: %s\n\n",
		snap.DemoBalance.StringFixed(2), snap.TotalValue.StringFixed(2), change)
	return nil
}

// printTrades imprime el trade log. Las filas BUY muestran "-" en PnL.
func (c *Console) printTrades(trades []domain.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(c.out, "  (no trades)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Date", "Action", "Price", "PnL")

	for i, t := range trades {
		pnl := "-"
		if t.PnLPercent != nil {
			pnl = fmt.Sprintf("%+.2f%%", *t.PnLPercent)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Date.Format("2006-01-02"),
			string(t.Action),
			fmt.Sprintf("$%.2f", t.Price),
			pnl,
		)
	}
	table.Render()
}

// printMetrics imprime el bloque de métricas del run.
func (c *Console) printMetrics(initial float64, m domain.Metrics) {
	fmt.Fprintf(c.out, "\n  Initial balance: $%.2f\n", initial)
	fmt.Fprintf(c.out, "  Final balance:   $%.2f\n", m.FinalBalance)
	fmt.Fprintf(c.out, "  Total return:    %+.2f%%\n", m.TotalReturnPct)
	fmt.Fprintf(c.out, "  Max drawdown:    %.2f%%\n", m.MaxDrawdownPct)
	fmt.Fprintf(c.out, "  Sharpe ratio:    %.2f\n", m.SharpeRatio)
	if m.TradeCount > 0 {
		fmt.Fprintf(c.out, "  Closed trades:   %d (win rate %.1f%%, profit factor %.2f)\n",
			m.TradeCount, m.WinRate, m.ProfitFactor)
	}
	fmt.Fprintln(c.out)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
