// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the translation files against the source code. It
// reports keys missing from a secondary locale (an error), keys no code uses
// (a warning) and string literals that look like untranslated user output.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Location stores the file and line number of a found string.
type Location struct {
	Filepath string
	Line     int
}

// report is the outcome of one lint run.
type report struct {
	Used         int
	Primary      int
	Orphaned     []string
	Missing      map[string][]string // locale file -> keys
	Untranslated map[string][]Location
}

func (r *report) failed(strict bool) bool {
	if len(r.Missing) > 0 {
		return true
	}
	return strict && len(r.Orphaned) > 0
}

var (
	// keyLiteralRe matches string literals shaped like message ids, e.g.
	// "add_client.success". Ids are passed around as plain strings (menu
	// labels, prompt helpers), so any such literal counts as a use.
	keyLiteralRe = regexp.MustCompile(`"([a-z][a-z_]*\.[a-z0-9_.]*[a-z0-9_])"`)
	keyRe        = regexp.MustCompile(`^[a-z_]+\.[a-z0-9_.]+$`)
	callRe       = regexp.MustCompile(`([a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	allCapsRe    = regexp.MustCompile(`^[A-Z_]+$`)
	formatOnlyRe = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
)

// ignoredCalls never produce translated output.
var ignoredCalls = map[string]struct{}{
	"Print": {}, "Println": {}, "Printf": {}, "Fatal": {}, "Fatalf": {}, "WriteString": {},
	"Debugf": {}, "Debug": {}, "Errorf": {}, "New": {}, "MustCompile": {}, "Getenv": {},
	"String": {}, "StringVar": {}, "Bool": {}, "BoolVar": {}, "BoolVarP": {}, "Int": {}, "IntVar": {},
	"StringArrayVar": {}, "DurationVar": {}, "Changed": {}, "Join": {}, "HasPrefix": {}, "HasSuffix": {},
}

var sqlPrefixes = []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "TRUNCATE ", "PRAGMA ", "CREATE ", "ALTER ", "DROP ", "VACUUM", "OPTIMIZE "}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var root, localesDir, primary string
	var strict bool
	cmd := &cobra.Command{
		Use:           "i18n-linter",
		Short:         "Check translation files for missing and orphaned keys",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lint(root, localesDir, primary)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
				return err
			}
			printReport(cmd.OutOrStdout(), r, primary)
			if r.failed(strict) {
				return fmt.Errorf("translation files are inconsistent")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Project root to scan for Go sources")
	cmd.Flags().StringVar(&localesDir, "locales", "internal/i18n/locales", "Directory with the locale YAML files")
	cmd.Flags().StringVar(&primary, "primary", "en.yaml", "Locale file that is the source of truth")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat orphaned keys as errors")
	return cmd
}

// lint compares the locale files in localesDir with the keys used under root.
func lint(root, localesDir, primary string) (*report, error) {
	used, err := findUsedKeys(root)
	if err != nil {
		return nil, fmt.Errorf("finding used keys: %w", err)
	}
	primaryKeys, err := loadKeysFromLocale(filepath.Join(localesDir, primary))
	if err != nil {
		return nil, fmt.Errorf("loading primary locale %s: %w", primary, err)
	}
	files, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("finding locale files: %w", err)
	}

	r := &report{
		Used:     len(used),
		Primary:  len(primaryKeys),
		Missing:  make(map[string][]string),
		Orphaned: difference(primaryKeys, used),
	}
	for _, file := range files {
		if filepath.Base(file) == primary {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
		if missing := difference(primaryKeys, keys); len(missing) > 0 {
			r.Missing[file] = missing
		}
	}

	r.Untranslated, err = findUntranslatedStrings(root, primaryKeys)
	if err != nil {
		return nil, fmt.Errorf("finding untranslated strings: %w", err)
	}
	return r, nil
}

func printReport(w io.Writer, r *report, primary string) {
	_, _ = fmt.Fprintf(w, "Found %d unique translation keys used in source code.\n", r.Used)
	_, _ = fmt.Fprintf(w, "Loaded %d keys from primary locale (%s).\n\n", r.Primary, primary)

	_, _ = fmt.Fprintln(w, "--- Orphaned keys (in primary locale but not used in code) ---")
	if len(r.Orphaned) == 0 {
		_, _ = fmt.Fprintln(w, "  ✨ None found.")
	}
	for _, key := range r.Orphaned {
		_, _ = fmt.Fprintf(w, "  - Orphaned: %s\n", key)
	}

	_, _ = fmt.Fprintln(w, "\n--- Missing keys (in primary locale but not in others) ---")
	if len(r.Missing) == 0 {
		_, _ = fmt.Fprintln(w, "  ✨ All keys present.")
	}
	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "%s:\n", f)
		for _, key := range r.Missing[f] {
			_, _ = fmt.Fprintf(w, "  - Missing: %s\n", key)
		}
	}

	_, _ = fmt.Fprintln(w, "\n--- Potentially untranslated strings ---")
	if len(r.Untranslated) == 0 {
		_, _ = fmt.Fprintln(w, "  ✨ None found.")
	}
	literals := make([]string, 0, len(r.Untranslated))
	for l := range r.Untranslated {
		literals = append(literals, l)
	}
	sort.Strings(literals)
	for _, l := range literals {
		loc := r.Untranslated[l][0]
		_, _ = fmt.Fprintf(w, "  - Potential: %q (found in %s:%d)\n", l, loc.Filepath, loc.Line)
	}
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// walkSources calls fn with the content of every non-test Go file under
// root, skipping the tools directory.
func walkSources(root string, fn func(path, content string)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if name := info.Name(); name == "tools" || (strings.HasPrefix(name, "_") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fn(path, string(content))
		return nil
	})
}

// findUsedKeys collects every literal shaped like a message id.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := walkSources(root, func(_ string, content string) {
		for _, m := range keyLiteralRe.FindAllStringSubmatch(content, -1) {
			keys[m[1]] = struct{}{}
		}
	})
	return keys, err
}

// findUntranslatedStrings scans for hardcoded strings passed to functions
// that might need translation.
func findUntranslatedStrings(root string, known map[string]struct{}) (map[string][]Location, error) {
	untranslated := make(map[string][]Location)
	err := walkSources(root, func(path, content string) {
		for i, line := range strings.Split(content, "\n") {
			for _, m := range callRe.FindAllStringSubmatch(line, -1) {
				funcName, literal := m[2], m[3]
				if _, skip := ignoredCalls[funcName]; skip {
					continue
				}
				if looksIntentional(literal, known) {
					continue
				}
				untranslated[literal] = append(untranslated[literal], Location{Filepath: path, Line: i + 1})
			}
		}
	})
	return untranslated, err
}

// looksIntentional filters out literals that are ids, code artifacts or too
// short to be user-facing text.
func looksIntentional(literal string, known map[string]struct{}) bool {
	if _, ok := known[literal]; ok {
		return true
	}
	if keyRe.MatchString(literal) || len(literal) < 4 {
		return true
	}
	if strings.HasPrefix(literal, "file:") || strings.HasPrefix(literal, "http") || strings.HasPrefix(literal, "2006-") {
		return true
	}
	upper := strings.ToUpper(literal)
	for _, p := range sqlPrefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	if allCapsRe.MatchString(literal) {
		return true
	}
	return formatOnlyRe.MatchString(literal) && !strings.Contains(literal, " ")
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into dot-separated keys. Flat files with
// dotted keys come out unchanged.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			newPrefix := k
			if prefix != "" {
				newPrefix = prefix + "." + k
			}
			flattenYAML(newPrefix, val, keys)
		}
	case []interface{}:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
