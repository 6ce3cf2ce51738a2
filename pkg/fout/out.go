/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

// Package out prints prompts and tables for the console.
package out

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	HiBlack = iota + 90
	HiRed
	HiGreen
	HiYellow
	HiBlue
)

const (
	OkPrompt    = "OK"
	WarnPrompt  = "!!"
	ErrPrompt   = "XX"
	InputPrompt = ">>"
	TipPrompt   = "++"
)

const TimeFormat = "2006-01-02 15:04:05"

// Stdout receives every message; tests replace it.
var Stdout io.Writer = os.Stdout

func colored(color int, prompt string) string {
	return fmt.Sprintf("\x1b[0;%dm%s\x1b[0m", color, prompt)
}

func stamped(color int, prompt, msg string) {
	fmt.Fprintln(Stdout, colored(color, prompt), fmt.Sprintf("%v %s", time.Now().Format(TimeFormat), msg))
}

func Input(msg string) {
	fmt.Fprintln(Stdout, colored(HiBlue, InputPrompt), msg)
}

func Tip(msg string) {
	stamped(HiGreen, TipPrompt, msg)
}

func Err(msg string) {
	stamped(HiRed, ErrPrompt, msg)
}

func Warn(msg string) {
	stamped(HiYellow, WarnPrompt, msg)
}

func Ok(msg string) {
	stamped(HiGreen, OkPrompt, msg)
}

// Table renders rows under an optional header.
func Table(w io.Writer, header table.Row, rows []table.Row) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if len(header) > 0 {
		tw.AppendHeader(header)
	}
	tw.AppendRows(rows)
	tw.Render()
}
