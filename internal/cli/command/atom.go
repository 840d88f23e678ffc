package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/atomstore/pkg/atom"
	store "github.com/yndnr/atomstore/pkg/storage"
)

// atomView is what get, set and reset print.
type atomView struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print an atom's value, seeding it with --initial when empty",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "initial",
				Usage: "JSON value written when nothing is stored",
				Value: "null",
			},
		},
		Action: getAtom,
	}
}

func getAtom(c *cli.Context) error {
	key, err := keyArg(c)
	if err != nil {
		return err
	}
	initial, err := parseJSON("--initial", c.String("initial"))
	if err != nil {
		return err
	}

	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.engine.Close()

	a, err := rt.open(key, initial)
	if err != nil {
		return err
	}
	v, err := a.Get()
	if err != nil {
		return err
	}
	return render(c, atomView{Key: key, Value: v})
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Replace an atom's value",
		ArgsUsage: "KEY JSON",
		Action:    setAtom,
	}
}

func setAtom(c *cli.Context) error {
	key, err := keyArg(c)
	if err != nil {
		return err
	}
	if c.NArg() != 2 {
		return fmt.Errorf("usage: %s set KEY JSON", c.App.Name)
	}
	value, err := parseJSON("value", c.Args().Get(1))
	if err != nil {
		return err
	}

	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.engine.Close()

	// The initial value only matters for an empty slot, which Set
	// overwrites straight away.
	a, err := rt.open(key, value)
	if err != nil {
		return err
	}
	v, err := a.Set(atom.Value(value))
	if err != nil {
		return err
	}
	return render(c, atomView{Key: key, Value: v})
}

// ResetCommand returns the reset command.
func ResetCommand() *cli.Command {
	return &cli.Command{
		Name:      "reset",
		Usage:     "Write an initial value back to an atom",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "initial",
				Usage:    "JSON value to write",
				Required: true,
			},
		},
		Action: resetAtom,
	}
}

func resetAtom(c *cli.Context) error {
	key, err := keyArg(c)
	if err != nil {
		return err
	}
	initial, err := parseJSON("--initial", c.String("initial"))
	if err != nil {
		return err
	}

	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.engine.Close()

	a, err := rt.open(key, initial)
	if err != nil {
		return err
	}
	v, err := a.Reset()
	if err != nil {
		return err
	}
	return render(c, atomView{Key: key, Value: v})
}

// KeysCommand returns the keys command.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "List stored keys",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Only list keys starting with `PREFIX`",
			},
		},
		Action: listKeys,
	}
}

func listKeys(c *cli.Context) error {
	rt, err := setup(c, false)
	if err != nil {
		return err
	}
	defer rt.engine.Close()

	keys, err := rt.engine.Keys(c.String("prefix"))
	if err != nil {
		if errors.Is(err, store.ErrNotSupported) {
			return fmt.Errorf("the %s preset cannot list keys", rt.engine.Preset())
		}
		return err
	}
	if keys == nil {
		keys = []string{}
	}
	return render(c, keys)
}

func keyArg(c *cli.Context) (string, error) {
	key := c.Args().First()
	if key == "" {
		return "", fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
	}
	return key, nil
}
