/*
	Copyright (C) CESS. All rights reserved.
	Copyright (C) Cumulus Encrypted Storage System. All rights reserved.

	SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"os"
	"path/filepath"

	"github.com/ComposableFi/composable-sub002/configs"
	"github.com/ComposableFi/composable-sub002/pkg/confile"
	out "github.com/ComposableFi/composable-sub002/pkg/fout"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:                   "init",
	Short:                 "Generate configuration file template",
	RunE:                  initCmdFunc,
	DisableFlagsInUseLine: true,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// initCmdFunc writes the profile template into the working directory.
func initCmdFunc(cmd *cobra.Command, args []string) error {
	if err := os.WriteFile(confile.DefaultProfile, []byte(confile.TempleteProfile), configs.FileMode); err != nil {
		return err
	}
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}
	out.Ok(filepath.Join(pwd, confile.DefaultProfile))
	return nil
}
