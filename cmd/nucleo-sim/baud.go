package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"nucleo-go/drivers/usart"
	"nucleo-go/x/timex"
)

var standardRates = []uint32{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600, 1000000}

// 8N1: start, eight data, stop.
const bitsPerFrame = 10

type baudRow struct {
	Rate    uint32
	Divisor uint16
	Actual  uint32
	ErrPct  float64
	Frame   time.Duration
	Err     error
}

func baudTable(clock uint32, rates []uint32) []baudRow {
	rows := make([]baudRow, 0, len(rates))
	for _, rate := range rates {
		row := baudRow{Rate: rate}
		row.Divisor, row.Err = usart.Divisor(clock, rate)
		if row.Err == nil {
			row.Actual = usart.ActualBaud(clock, row.Divisor)
			row.ErrPct = (float64(row.Actual) - float64(rate)) * 100 / float64(rate)
			row.Frame = timex.FrameTime(row.Actual, bitsPerFrame)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeBaudTable(w io.Writer, clock uint32, rows []baudRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "clock %d Hz\t\t\t\t\t\n", clock)
	fmt.Fprintln(tw, "rate\tBRR\tactual\terror\tframe\t")
	for _, r := range rows {
		if r.Err != nil {
			fmt.Fprintf(tw, "%d\t-\t-\t-\t%v\t\n", r.Rate, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%+.2f%%\t%v\t\n", r.Rate, r.Divisor, r.Actual, r.ErrPct, r.Frame)
	}
	return tw.Flush()
}
