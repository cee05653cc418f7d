// cmd/replicator/commands.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tamzrod/ff7-replicator/internal/config"
	"github.com/tamzrod/ff7-replicator/internal/decoder"
	"github.com/tamzrod/ff7-replicator/internal/hacks"
	"github.com/tamzrod/ff7-replicator/internal/memory"
	"github.com/tamzrod/ff7-replicator/internal/portable"
	"github.com/tamzrod/ff7-replicator/internal/refdata"
	"github.com/tamzrod/ff7-replicator/internal/savestate"
)

var errUsage = errors.New("bad arguments")

func parseFlags(fs *flag.FlagSet, args []string, want int) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if want >= 0 && fs.NArg() != want {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", errUsage, fs.Name(), want, fs.NArg())
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cmdState prints one decoded state, plus the name tables when readable.
func cmdState(cfg *config.Config, out io.Writer) error {
	acc, err := memory.ProcessOpener(cfg.Replicator.Process.Name)()
	if err != nil {
		return err
	}
	defer memory.Close(acc)

	raw, err := decoder.Fetch(acc, decoder.DefaultSignatures)
	if err != nil {
		return err
	}
	st, err := decoder.Decode(raw, decoder.DefaultSignatures)
	if err != nil {
		return err
	}

	tables, err := refdata.ReadTables(acc)
	if err != nil {
		log.Printf("refdata: tables not available (err=%v)", err)
	}

	return printJSON(out, struct {
		State  *decoder.State  `json:"state"`
		Tables *refdata.Tables `json:"tables,omitempty"`
	}{st, tables})
}

func cmdList(a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", "", "filter: all, uncategorized or a category name")
	snowboard := fs.Bool("snowboard", false, "list snowboard states")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if *snowboard {
		fmt.Fprintln(tw, "ID\tCAPTURED\tTITLE")
		for _, s := range a.lib.Snowboards.All() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, stamp(s.Timestamp), s.Title)
		}
		return nil
	}

	fmt.Fprintln(tw, "ID\tCAPTURED\tFIELD\tCATEGORY\tTITLE")
	for _, s := range savestate.ByCategory(a.lib.Fields, *category) {
		fmt.Fprintf(tw, "%s\t%s\t%d %s\t%s\t%s\n", s.ID, stamp(s.Timestamp), s.FieldID, s.FieldName, s.Category, s.Title)
	}
	return nil
}

func stamp(ms int64) string {
	return time.UnixMilli(ms).Format(time.DateTime)
}

func cmdCapture(a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	title := fs.String("title", "", "title")
	category := fs.String("category", "", "category")
	snowboard := fs.Bool("snowboard", false, "capture the snowboard minigame")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}

	acc, err := a.open()
	if err != nil {
		return err
	}
	defer memory.Close(acc)
	eng := savestate.NewEngine(acc)

	if *snowboard {
		s, err := eng.CaptureSnowboard(*title)
		if err != nil {
			return err
		}
		a.lib.Snowboards.Add(s)
		fmt.Fprintln(out, s.ID)
		return nil
	}

	// Field metadata comes from a decoded tick; a failed decode still
	// captures, just without it.
	meta := savestate.Metadata{Title: *title, Category: strings.TrimSpace(*category)}
	if raw, err := decoder.Fetch(acc, decoder.DefaultSignatures); err == nil {
		if st, err := decoder.Decode(raw, decoder.DefaultSignatures); err == nil {
			meta.FieldID, meta.FieldName = st.FieldID, st.FieldName
		}
	}

	s, err := eng.Capture(meta)
	if err != nil {
		return err
	}
	a.lib.Fields.Add(s)
	fmt.Fprintln(out, s.ID)
	return nil
}

func cmdRestore(a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	snowboard := fs.Bool("snowboard", false, "restore a snowboard state")
	yes := fs.Bool("yes", false, "skip the confirmation requirement")
	index := fs.Int("index", -1, "restore by position instead of id")
	if err := parseFlags(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: restore takes at most one id", errUsage)
	}
	if a.general.ConfirmRestore && !*yes {
		return fmt.Errorf("%w: restore confirmation is enabled, pass -yes", errUsage)
	}
	id := fs.Arg(0)

	acc, err := a.open()
	if err != nil {
		return err
	}
	defer memory.Close(acc)
	eng := savestate.NewEngine(acc)

	if *snowboard {
		s, ok := pick(a.lib.Snowboards, id, *index)
		if !ok {
			return fmt.Errorf("snowboard state %q: %w", id, savestate.ErrNotFound)
		}
		if err := eng.RestoreSnowboard(s); err != nil {
			return err
		}
		fmt.Fprintf(out, "restored %s\n", s.ID)
		return a.lib.Snowboards.MarkLoaded(s.ID)
	}

	s, ok := pick(a.lib.Fields, id, *index)
	if !ok {
		return fmt.Errorf("field state %q: %w", id, savestate.ErrNotFound)
	}
	if err := eng.Restore(s); err != nil {
		return err
	}
	fmt.Fprintf(out, "restored %s\n", s.ID)
	return a.lib.Fields.MarkLoaded(s.ID)
}

// pick resolves a position, an id, or the latest state when neither is given.
func pick[T savestate.Record[T]](c *savestate.Collection[T], id string, index int) (T, bool) {
	if index >= 0 {
		return c.At(index)
	}
	if id == "" {
		return c.Latest()
	}
	return c.Get(id)
}

func cmdRemove(a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	snowboard := fs.Bool("snowboard", false, "remove snowboard states")
	if err := parseFlags(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: remove needs at least one id", errUsage)
	}

	var n int
	if *snowboard {
		n = a.lib.Snowboards.RemoveMany(fs.Args())
	} else {
		n = a.lib.Fields.RemoveMany(fs.Args())
	}
	fmt.Fprintf(out, "removed %d\n", n)
	return nil
}

func cmdRename(a *app, args []string) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	snowboard := fs.Bool("snowboard", false, "rename a snowboard state")
	if err := parseFlags(fs, args, 2); err != nil {
		return err
	}
	if *snowboard {
		return a.lib.Snowboards.Rename(fs.Arg(0), fs.Arg(1))
	}
	return a.lib.Fields.Rename(fs.Arg(0), fs.Arg(1))
}

func cmdMove(a *app, args []string) error {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	after := fs.Bool("after", false, "place after the anchor instead of before")
	if err := parseFlags(fs, args, 2); err != nil {
		return err
	}
	return a.lib.Fields.Move(fs.Arg(0), fs.Arg(1), *after)
}

func cmdCategory(a *app, args []string) error {
	fs := flag.NewFlagSet("category", flag.ContinueOnError)
	if err := parseFlags(fs, args, 2); err != nil {
		return err
	}
	return savestate.SetCategory(a.lib.Fields, fs.Arg(0), fs.Arg(1))
}

func cmdClear(a *app, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	snowboard := fs.Bool("snowboard", false, "clear snowboard states")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	if *snowboard {
		a.lib.Snowboards.Clear()
	} else {
		a.lib.Fields.Clear()
	}
	return nil
}

func cmdExport(a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	if err := parseFlags(fs, args, 1); err != nil {
		return err
	}
	path := fs.Arg(0)
	if !strings.HasSuffix(path, portable.FileExtension) {
		path += portable.FileExtension
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := portable.Write(f, portable.Export(a.lib.Document())); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "exported %d field and %d snowboard states to %s\n",
		a.lib.Fields.Len(), a.lib.Snowboards.Len(), path)
	return nil
}

func cmdImport(a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	if err := parseFlags(fs, args, 1); err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := portable.Read(f)
	if err != nil {
		return err
	}
	fields, snowboards, err := portable.Import(doc, a.lib)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d field and %d snowboard states\n", fields, snowboards)
	return nil
}

// parseHack turns "name value" into the matching hack value.
func parseHack(name, value string) (hacks.Values, error) {
	var v hacks.Values
	switch name {
	case "speed":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return v, fmt.Errorf("%w: speed %q", errUsage, value)
		}
		v.Speed = &f
	case "encounters":
		m := decoder.EncounterMode(value)
		v.Encounters = &m
	case "swirl", "atb", "unfocus":
		on, err := parseOnOff(value)
		if err != nil {
			return v, err
		}
		switch name {
		case "swirl":
			v.SwirlSkip = &on
		case "atb":
			v.InstantATB = &on
		default:
			v.UnfocusPatch = &on
		}
	default:
		return v, fmt.Errorf("%w: unknown hack %q", errUsage, name)
	}
	return v, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", errUsage, s)
}

func cmdHack(ctx context.Context, a *app, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("hack", flag.ContinueOnError)
	if err := parseFlags(fs, args, 2); err != nil {
		return err
	}
	v, err := parseHack(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}

	acc, err := a.open()
	if err != nil {
		return err
	}
	defer memory.Close(acc)

	if err := hacks.Apply(ctx, acc, v); err != nil {
		if errors.Is(err, hacks.ErrSpeedHackUnsupported) {
			fmt.Fprintln(out, "the speed hack is not supported for this FFnx build on this platform")
		}
		return err
	}
	fmt.Fprintf(out, "%s set to %s\n", fs.Arg(0), fs.Arg(1))
	return a.saveHacks(v)
}
