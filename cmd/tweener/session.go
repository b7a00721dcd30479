package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/tweener/internal/config"
	"github.com/ivlev/tweener/internal/history"
	"github.com/ivlev/tweener/internal/scene"
	"github.com/ivlev/tweener/internal/system"
	"github.com/ivlev/tweener/internal/tween"
)

var (
	sessionScene  string
	sessionCurves []string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive press/drag/release session on a scene",
	Long: `Reads gesture commands from stdin: press, drag, release, cancel, undo,
redo, status, save, quit. Undo history is kept in memory for the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := system.ResolveScene(sessionScene)
		if err != nil {
			return err
		}
		sc, err := openScene(path, cfg, sessionCurves, false)
		if err != nil {
			return err
		}
		r := newGestureREPL(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, path, sc)
		return r.Run(cmd.InOrStdin())
	},
}

func init() {
	sessionCmd.Flags().StringVarP(&sessionScene, "scene", "s", "", "Scene file")
	sessionCmd.Flags().StringSliceVar(&sessionCurves, "curves", nil, "Only curves whose name or node/attribute matches these patterns")
	sessionCmd.MarkFlagRequired("scene")
}

// gestureREPL is the gesture handler: it owns the engine, the open session
// and the undo stack.
type gestureREPL struct {
	out     io.Writer
	path    string
	scene   *scene.Scene
	engine  *tween.Engine
	session *tween.Session
	stack   *history.Stack
	shape   string
	dirty   bool
}

func newGestureREPL(out, errOut io.Writer, c *config.Config, path string, sc *scene.Scene) *gestureREPL {
	opts := c.EngineOptions()
	opts.Logger = engineLogger(errOut)
	return &gestureREPL{
		out:    out,
		path:   path,
		scene:  sc,
		engine: tween.NewEngine(sc, opts),
		stack:  history.NewStack(100),
		shape:  c.Shape,
	}
}

// Run processes commands until quit or end of input. An open session is
// released at the end so its edits stay undoable.
func (r *gestureREPL) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !r.handleCommand(line) {
			break
		}
	}
	if r.session != nil {
		r.release()
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if r.dirty {
		fmt.Fprintln(r.out, "[!] Unsaved changes discarded")
	}
	return nil
}

func (r *gestureREPL) handleCommand(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(r.out, "press [shape] | drag <factor> [shape] | release | cancel | undo | redo | status | save | quit")
	case "quit", "exit":
		return false
	case "press", "p":
		r.press(args)
	case "drag", "d":
		r.drag(args)
	case "release", "r":
		r.release()
	case "cancel":
		r.cancel()
	case "undo":
		r.undo(false)
	case "redo":
		r.undo(true)
	case "status":
		r.status()
	case "save":
		r.save()
	default:
		fmt.Fprintf(r.out, "[-] Unknown command %q (try 'help')\n", cmd)
	}
	return true
}

func (r *gestureREPL) press(args []string) {
	name := r.shape
	if len(args) > 0 {
		name = args[0]
	}
	if r.session != nil {
		// implicit release keeps the open gesture undoable
		r.release()
	}
	s, err := r.engine.PressSelection(r.scene, r.scene, name)
	if errors.Is(err, tween.ErrNoTweenableKeys) {
		fmt.Fprintln(r.out, "[!] Nothing to tween: no tweenable keys selected")
		return
	}
	if err != nil {
		fmt.Fprintf(r.out, "[-] %v\n", err)
		return
	}
	r.session = s
	source := "at the current time"
	if s.FromEditor() {
		source = "from the curve editor"
	}
	fmt.Fprintf(r.out, "[*] Session %s: %d keys %s, shape %s\n", shortID(s.ID().String()), len(s.Targets()), source, s.Shape())
}

func (r *gestureREPL) drag(args []string) {
	if r.session == nil {
		fmt.Fprintln(r.out, "[-] No session: press first")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(r.out, "[-] Usage: drag <factor> [shape]")
		return
	}
	factor, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Fprintf(r.out, "[-] Invalid factor %q\n", args[0])
		return
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	if err := r.engine.Drag(r.session, factor, name); err != nil {
		fmt.Fprintf(r.out, "[!] %v\n", err)
	}
	r.dirty = true
	printEntries(r.out, r.session.Cache().Entries())
}

func (r *gestureREPL) release() {
	if r.session == nil {
		fmt.Fprintln(r.out, "[-] No session")
		return
	}
	cache, err := r.engine.Release(r.session)
	r.session = nil
	if err != nil {
		fmt.Fprintf(r.out, "[-] %v\n", err)
		return
	}
	r.stack.Push(cache)
	fmt.Fprintf(r.out, "[+] Released: %d keys\n", cache.Len())
}

func (r *gestureREPL) cancel() {
	if r.session == nil {
		fmt.Fprintln(r.out, "[-] No session")
		return
	}
	err := r.engine.Cancel(r.session)
	r.session = nil
	if err != nil {
		fmt.Fprintf(r.out, "[-] %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "[+] Cancelled")
}

func (r *gestureREPL) undo(redo bool) {
	if r.session != nil {
		r.release()
	}
	var err error
	if redo {
		err = r.stack.Redo()
	} else {
		err = r.stack.Undo()
	}
	if err != nil {
		fmt.Fprintf(r.out, "[-] %v\n", err)
		return
	}
	r.dirty = true
	u, rd := r.stack.Depth()
	fmt.Fprintf(r.out, "[+] Done (undo %d, redo %d)\n", u, rd)
}

func (r *gestureREPL) status() {
	u, rd := r.stack.Depth()
	if r.session == nil {
		fmt.Fprintf(r.out, "[*] Idle (undo %d, redo %d)\n", u, rd)
		return
	}
	s := r.session
	fmt.Fprintf(r.out, "[*] Active %s: shape %s, factor %g, %d drags (undo %d, redo %d)\n",
		shortID(s.ID().String()), s.Shape(), s.Factor(), s.Drags(), u, rd)
}

func (r *gestureREPL) save() {
	if err := r.scene.Save(r.path); err != nil {
		fmt.Fprintf(r.out, "[-] %v\n", err)
		return
	}
	r.dirty = false
	fmt.Fprintf(r.out, "[+] Saved %s\n", r.path)
}
