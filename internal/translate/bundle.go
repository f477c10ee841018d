// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"fmt"
	"strings"

	"github.com/mocnha/mocnha-go/internal/model"
)

// PrefixCollisionError reports two keys where one is a dot-path prefix of the
// other, which cannot both exist in a nested bundle.
type PrefixCollisionError struct {
	Key string
}

func (e *PrefixCollisionError) Error() string {
	return fmt.Sprintf("translation key %q collides with another key sharing its prefix", e.Key)
}

// Nest folds entries into a nested map keyed by the dot segments of each
// entry key. Leaves hold the value for lang, empty string when the entry has
// no sub-record for it. A key that is a prefix of another key is an error,
// never a silent overwrite.
func Nest(entries []model.TranslationEntry, lang string) (map[string]any, error) {
	out := make(map[string]any)
	for _, entry := range entries {
		segments := strings.Split(entry.Key, ".")
		cur := out
		for i, seg := range segments {
			last := i == len(segments)-1
			existing, ok := cur[seg]
			if last {
				if ok {
					return nil, &PrefixCollisionError{Key: entry.Key}
				}
				cur[seg] = entry.ValueFor(lang)
				continue
			}
			if !ok {
				next := make(map[string]any)
				cur[seg] = next
				cur = next
				continue
			}
			next, isMap := existing.(map[string]any)
			if !isMap {
				return nil, &PrefixCollisionError{Key: entry.Key}
			}
			cur = next
		}
	}
	return out, nil
}
