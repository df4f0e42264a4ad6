package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(dumpTemplate), 0o600)
}

const dumpTemplate = `# framedump configuration
max_auth_bytes = 65536
max_payload_bytes = 8388608
log_level = "info"
# yaml or text
output = "yaml"
decompress = true
check_header = true
# metrics_out = "framedump.prom"
# frames whose auth block differs are reported invalid
# auth_token = ""
`
