// main.go
//
// Storefront data service for catalog, orders and digital delivery
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of storefront-data.
// storefront-data is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// storefront-data is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with storefront-data.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/localnerve/storefront-data/internal/config"
	"github.com/localnerve/storefront-data/internal/utils"
)

// The blob store file is held open by the server, so the probe asks the running
// server for its health instead of opening the stores itself.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	healthURL := fmt.Sprintf("http://127.0.0.1:%s/api/health", cfg.Port)
	status, body, err := utils.FetchHealth(healthURL, 3*time.Second)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	fmt.Println(string(body))

	if status != 200 {
		os.Exit(1)
	}
	os.Exit(0)
}
