// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mocnha/mocnha-go/internal/model"
)

// Seed inserts the baseline rows a fresh database needs: the two storefront
// languages and, when the users table is empty, an initial admin account.
// adminPasswordHash must already be hashed by the caller.
func (q *Queries) Seed(ctx context.Context, adminEmail, adminPasswordHash string) error {
	languages := []CreateLanguageParams{
		{Code: model.LangVietnamese, Name: "Vietnamese", NativeName: "Tiếng Việt", IsDefault: true, IsActive: true, Position: 1},
		{Code: model.LangChinese, Name: "Chinese", NativeName: "中文", IsDefault: false, IsActive: true, Position: 2},
	}
	for _, lang := range languages {
		if _, err := q.CreateLanguage(ctx, lang); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("seeding language %s: %w", lang.Code, err)
		}
	}

	count, err := q.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count == 0 && adminEmail != "" {
		_, err := q.CreateUser(ctx, CreateUserParams{
			Email:        adminEmail,
			PasswordHash: adminPasswordHash,
			Role:         model.RoleAdmin,
			Name:         "Administrator",
		})
		if err != nil {
			return fmt.Errorf("seeding admin user: %w", err)
		}
	}

	return nil
}
