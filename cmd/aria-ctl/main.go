package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"aria/internal/ipc"
)

func main() {
	cli.Parse()

	cmd := "listen"
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	msg := ipc.ControlMessage{Cmd: cmd}
	if cmd == "say" {
		msg.Text = strings.Join(cli.Args()[1:], " ")
	}

	if err := ipc.Send(msg); err != nil {
		fmt.Println("aria-daemon not running:", err)
		os.Exit(1)
	}
}
