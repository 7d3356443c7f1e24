package window

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/azscript/pkg/scenario"
	"github.com/zurustar/azscript/pkg/space"
)

// ErrCancelled is returned when the user quits the selection prompt.
var ErrCancelled = errors.New("user cancelled")

// RunHeadless ヘッドレスモードでシナリオ選択を実行
// 選択後に RunConsole で同じ入力を読み続けられるよう、scanner は呼び出し側が所有する
func RunHeadless(entries []scenario.Entry, timeout time.Duration, scanner *bufio.Scanner, writer io.Writer) (*scenario.Entry, error) {
	// シナリオが1つの場合は自動選択
	if len(entries) == 1 {
		fmt.Fprintf(writer, "Auto-selecting scenario: %s\n", entries[0].Name)
		return &entries[0], nil
	}
	if len(entries) == 0 {
		return nil, scenario.ErrNoScenarios
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fmt.Fprintln(writer, "Available scenarios:")
	for i, e := range entries {
		fmt.Fprintf(writer, "  %d: %s\n", i+1, e.Name)
	}
	fmt.Fprintln(writer)

	resultCh := make(chan *scenario.Entry, 1)
	errCh := make(chan error, 1)

	go func() {
		for {
			fmt.Fprintf(writer, "Select a scenario (1-%d) or 'q' to quit: ", len(entries))
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					errCh <- fmt.Errorf("failed to read input: %w", err)
				} else {
					errCh <- fmt.Errorf("input closed")
				}
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "q" || input == "Q" {
				errCh <- ErrCancelled
				return
			}

			num, err := strconv.Atoi(input)
			if err != nil {
				// 名前でも選択できる
				for i := range entries {
					if strings.EqualFold(entries[i].Name, input) {
						fmt.Fprintf(writer, "Selected: %s\n", entries[i].Name)
						resultCh <- &entries[i]
						return
					}
				}
				fmt.Fprintln(writer, "Invalid input. Please enter a number.")
				continue
			}
			if num < 1 || num > len(entries) {
				fmt.Fprintf(writer, "Invalid selection. Please enter a number between 1 and %d.\n", len(entries))
				continue
			}

			selected := &entries[num-1]
			fmt.Fprintf(writer, "Selected: %s\n", selected.Name)
			resultCh <- selected
			return
		}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout")
	case err := <-errCh:
		return nil, err
	case selected := <-resultCh:
		return selected, nil
	}
}

const consoleHelp = `commands:
  list              show triggers
  fire <name>       run a trigger or node (a bare name works too)
  kill              kill the first baddie
  tick [n]          advance n frames (default 1)
  state             show the room state
  dump <name>       show the script of a trigger or node
  help              show this help
  q                 quit
`

// RunConsole は標準入力から Session を操作する
// 入力の終了、q コマンド、または ctx の終了で正常に戻る
func RunConsole(ctx context.Context, sess *Session, scanner *bufio.Scanner, writer io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- fmt.Errorf("failed to read input: %w", err)
		}
	}()

	c := &console{sess: sess, w: writer}
	fmt.Fprint(writer, "> ")
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(writer)
			return nil
		case err := <-errCh:
			return err
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					return err
				default:
				}
				return nil
			}
			if quit := c.exec(line); quit {
				return nil
			}
			fmt.Fprint(writer, "> ")
		}
	}
}

type console struct {
	sess *Session
	w    io.Writer
}

// exec は1行のコマンドを実行する。終了する場合は true を返す
func (c *console) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "q", "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprint(c.w, consoleHelp)
	case "list":
		for i, name := range c.sess.Triggers() {
			fmt.Fprintf(c.w, "  %d: %s\n", i+1, name)
		}
	case "state":
		c.sess.Snapshot().Fprint(c.w)
	case "kill":
		o, ok := c.sess.KillFirst()
		if !ok {
			fmt.Fprintln(c.w, "no baddies")
			return false
		}
		fmt.Fprintln(c.w, o.Summary())
	case "tick":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				fmt.Fprintf(c.w, "invalid tick count %q\n", args[0])
				return false
			}
			n = v
		}
		for i := 0; i < n; i++ {
			for _, o := range c.sess.Tick() {
				fmt.Fprintln(c.w, o.Summary())
			}
		}
		fmt.Fprintf(c.w, "frame %d\n", c.sess.Snapshot().Frame)
	case "dump":
		if len(args) != 1 {
			fmt.Fprintln(c.w, "usage: dump <name>")
			return false
		}
		listing, err := c.sess.Dump(args[0])
		if err != nil {
			fmt.Fprintln(c.w, err)
			return false
		}
		fmt.Fprintln(c.w, listing)
	case "fire":
		if len(args) != 1 {
			fmt.Fprintln(c.w, "usage: fire <name>")
			return false
		}
		c.fire(args[0])
	default:
		if len(args) > 0 {
			fmt.Fprintf(c.w, "unknown command %q (try help)\n", cmd)
			return false
		}
		if n, err := strconv.Atoi(cmd); err == nil {
			c.print(c.sess.FireIndex(n - 1))
			return false
		}
		c.fire(cmd)
	}
	return false
}

func (c *console) fire(name string) {
	c.print(c.sess.Fire(name))
}

func (c *console) print(o space.Outcome, err error) {
	if err != nil {
		fmt.Fprintln(c.w, err)
		return
	}
	fmt.Fprintln(c.w, o.Summary())
}
