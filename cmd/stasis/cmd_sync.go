// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/StasisPet/pkg/api"
	"github.com/AleutianAI/StasisPet/pkg/ux"
)

func runSync(cmd *cobra.Command, args []string) {
	userID := mustUserID()

	ctx, cancel := cmdContext()
	defer cancel()

	var result api.SyncResult
	err := ux.WithSpinner("syncing external tasks", func() error {
		var err error
		result, err = client.SyncNotion(ctx, userID)
		return err
	})
	if err != nil {
		fail(err)
	}

	log.Info("sync completed", "overdue", result.OverdueCount, "damage", result.DamageDealt)
	if result.DamageDealt > 0 {
		ux.Warning(fmt.Sprintf("%d overdue tasks dealt %g HP", result.OverdueCount, result.DamageDealt))
	} else {
		ux.Success("synced; no overdue damage")
	}
}
