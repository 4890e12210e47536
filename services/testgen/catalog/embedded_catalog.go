// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
This file bridges the build system and the runtime classifier. It uses the Go
embed package to bake categories.yaml directly into the compiled binary, so the
category catalog travels with the executable and cannot drift from the code
that interprets it.
*/

package catalog

import (
	_ "embed"
)

// EmbeddedCategories holds the raw byte content of the 'categories.yaml' file.
//
// Populated at compile time via the Go 'embed' directive. Editing the catalog
// means editing the YAML and recompiling; there is no runtime override.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(catalog.EmbeddedCategories, &targetStruct)
//
//go:embed categories.yaml
var EmbeddedCategories []byte
