// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (LoadMap before Load)
//  2. YAML configuration file
//  3. Environment variables (ATOMSTORE_ prefix)
//  4. Command-line overrides (LoadMap after Load)
//
// Environment variables separate nesting levels with a double underscore
// so single underscores survive inside key names:
// ATOMSTORE_STORAGE__DATA_DIR sets storage.data_dir.
//
// Watcher reports changes to a configuration file using fsnotify.
package confloader
