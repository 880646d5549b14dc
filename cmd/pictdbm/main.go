/* SPDX-License-Identifier: Apache-2.0
 *
 * Copyright 2023 Damian Peckett <damian@peckett>.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command pictdbm is the interactive CLI collaborator from spec.md S6:
// list, create, read, insert, delete, gc, each mapped onto
// internal/pictdb operations and onto a taxonomy-derived exit code.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/epfl-sysproj/pictdb/internal/imageproc"
	"github.com/epfl-sysproj/pictdb/internal/pictdb"
)

func main() {
	app := &cli.App{
		Name:  "pictdbm",
		Usage: "manage a single-file pictDB image database",
		Commands: []*cli.Command{
			listCommand(),
			createCommand(),
			readCommand(),
			insertCommand(),
			deleteCommand(),
			gcCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error taxonomy Kind to a positive process exit
// code, per spec.md S6's "taxonomy code" contract.
func exitCodeFor(err error) int {
	var pe *pictdb.Error
	if !asPictdbError(err, &pe) {
		return 1
	}
	return int(pe.Kind) + 1
}

func asPictdbError(err error, target **pictdb.Error) bool {
	for err != nil {
		if pe, ok := err.(*pictdb.Error); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func openDB(path string) (*pictdb.DB, error) {
	return pictdb.Open(path, pictdb.ReadWrite, imageproc.Provider{})
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list the pictures stored in a database",
		ArgsUsage: "DB",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return pictdb.ErrNotEnoughArguments
			}
			db, err := openDB(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Println(db.ListText())
			klog.Infof("listed database %s: num_files=%d", c.Args().Get(0), db.NumFiles())
			return nil
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "create a new database",
		ArgsUsage: "DB",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "max_files", Value: pictdb.DefaultMaxFiles},
			&cli.UintFlag{Name: "thumb_x", Value: pictdb.DefaultThumbX},
			&cli.UintFlag{Name: "thumb_y", Value: pictdb.DefaultThumbY},
			&cli.UintFlag{Name: "small_x", Value: pictdb.DefaultSmallX},
			&cli.UintFlag{Name: "small_y", Value: pictdb.DefaultSmallY},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return pictdb.ErrNotEnoughArguments
			}

			cfg := pictdb.Config{
				MaxFiles: uint32(c.Uint("max_files")),
				ThumbX:   uint16(c.Uint("thumb_x")),
				ThumbY:   uint16(c.Uint("thumb_y")),
				SmallX:   uint16(c.Uint("small_x")),
				SmallY:   uint16(c.Uint("small_y")),
			}

			db, err := pictdb.Create(c.Args().Get(0), cfg, imageproc.Provider{})
			if err != nil {
				return err
			}
			defer db.Close()

			klog.Infof("created database %s: max_files=%d", c.Args().Get(0), cfg.MaxFiles)
			return nil
		},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "read a picture out of a database, writing it to ID.jpg",
		ArgsUsage: "DB ID [RESOLUTION]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return pictdb.ErrNotEnoughArguments
			}

			res := "orig"
			if c.NArg() >= 3 {
				res = c.Args().Get(2)
			}
			variant, err := pictdb.ParseVariant(res)
			if err != nil {
				return err
			}

			db, err := openDB(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer db.Close()

			id := c.Args().Get(1)
			blob, err := db.Read(id, variant)
			if err != nil {
				return err
			}

			outPath := id + ".jpg"
			if err := os.WriteFile(outPath, blob, 0o644); err != nil {
				return pictdb.ErrIO
			}

			klog.Infof("read picture %s -> %s", id, outPath)
			return nil
		},
	}
}

func insertCommand() *cli.Command {
	return &cli.Command{
		Name:      "insert",
		Usage:     "insert a picture into a database",
		ArgsUsage: "DB ID FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return pictdb.ErrNotEnoughArguments
			}

			id := c.Args().Get(1)
			if len(id) == 0 || len(id) > 127 {
				return pictdb.ErrInvalidPictID
			}

			blob, err := os.ReadFile(c.Args().Get(2))
			if err != nil {
				return pictdb.ErrIO
			}

			db, err := openDB(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Insert(id, blob); err != nil {
				return err
			}

			klog.Infof("inserted picture %s: bytes=%d", id, len(blob))
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a picture from a database",
		ArgsUsage: "DB ID",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return pictdb.ErrNotEnoughArguments
			}

			db, err := openDB(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer db.Close()

			id := c.Args().Get(1)
			if err := db.Delete(id); err != nil {
				return err
			}

			klog.Infof("deleted picture %s", id)
			return nil
		},
	}
}

func gcCommand() *cli.Command {
	return &cli.Command{
		Name:      "gc",
		Usage:     "compact a database, removing deleted pictures",
		ArgsUsage: "DB TMP",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return pictdb.ErrNotEnoughArguments
			}

			db, err := openDB(c.Args().Get(0))
			if err != nil {
				return err
			}

			if err := pictdb.GarbageCollect(db, c.Args().Get(1)); err != nil {
				db.Close()
				return err
			}
			db.Close()

			klog.Infof("compacted database %s", c.Args().Get(0))
			return nil
		},
	}
}
