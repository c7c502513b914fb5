package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/dsyslab/tokenlens/pkg/ignore"
)

func runIgnores(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: tokenlens ignores <list|add|remove> [flags]")
	}
	sub := args[0]

	fs := flag.NewFlagSet("ignores "+sub, flag.ExitOnError)
	cf := addCommonFlags(fs)
	node := fs.String("node", "", "node id for a by-id suppression")
	valueType := fs.String("value-type", "", "value type for a by-value suppression: stroke, fill or text-no-style")
	value := fs.String("value", "", "hex color for stroke/fill suppressions")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	env, err := openEnv(cf)
	if err != nil {
		return err
	}
	defer env.close()

	store := ignore.NewStore(env.kv, env.doc.DocumentID(), env.log)
	ctx := context.Background()

	switch sub {
	case "list":
		summary, err := store.Summarize(ctx, env.doc)
		if err != nil {
			return err
		}
		return printJSON(summary)
	case "add":
		return editIgnores(ctx, store, *node, *valueType, *value, true)
	case "remove":
		return editIgnores(ctx, store, *node, *valueType, *value, false)
	default:
		return fmt.Errorf("unknown ignores subcommand: %s", sub)
	}
}

func editIgnores(ctx context.Context, store *ignore.Store, node, valueType, value string, add bool) error {
	switch {
	case node != "" && valueType != "":
		return fmt.Errorf("pass either --node or --value-type, not both")
	case node != "":
		if add {
			return store.AddElement(ctx, node)
		}
		return store.RemoveElement(ctx, node)
	case valueType != "":
		vi := ignore.ValueIgnore{ValueType: ignore.ValueType(valueType), Value: value}
		switch vi.ValueType {
		case ignore.ValueStroke, ignore.ValueFill:
			if vi.Value == "" {
				return fmt.Errorf("--value is required for %s suppressions", valueType)
			}
		case ignore.ValueTextNoStyle:
			vi.Value = ""
		default:
			return fmt.Errorf("unknown value type: %s", valueType)
		}
		if add {
			return store.AddValue(ctx, vi)
		}
		return store.RemoveValue(ctx, vi)
	default:
		return fmt.Errorf("pass --node or --value-type")
	}
}
