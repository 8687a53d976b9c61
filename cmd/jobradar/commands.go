package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobradar/jobradar/internal/config"
	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/profile"
	"github.com/jobradar/jobradar/internal/storage"
)

// --- load ---

var loadCmd = &cobra.Command{
	Use:   "load [csv-path]",
	Short: "Load a job posting CSV into local storage",
	Long: `Load a job posting CSV into local storage.

The CSV must carry a job_id column; title, company, location, description,
and source columns are picked up when present. Rows without a job_id are
skipped. When no path is given, the configured corpus path is used.

Examples:
  jobradar load ./jobs.csv
  jobradar load`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		path := cfg.Corpus.Path
		if len(args) == 1 {
			path = args[0]
		}

		c, err := corpus.LoadCSV(path)
		if err != nil {
			return err
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if err := store.ReplaceJobs(c); err != nil {
			return fmt.Errorf("saving jobs: %w", err)
		}

		printSuccess("Loaded %d jobs from %s", c.Len(), path)
		return nil
	},
}

// --- extract ---

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract known skills from text",
	Long: `Extract known skills from text using the running jobradar server.

Examples:
  jobradar extract --text "5 years of Python and SQL experience"
  jobradar extract --file ./posting.txt --method regex`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		method, _ := cmd.Flags().GetString("method")

		if text == "" && file == "" {
			return fmt.Errorf("one of --text or --file is required")
		}
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			text = string(data)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/extract", map[string]any{
			"text":   text,
			"method": method,
		})
		if err != nil {
			return err
		}

		var result struct {
			Skills []struct {
				Skill      string  `json:"skill_name"`
				Category   string  `json:"skill_category"`
				Confidence float64 `json:"confidence_score"`
				Method     string  `json:"extraction_method"`
			} `json:"skills"`
			Count int `json:"count"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.Count == 0 {
			fmt.Println("No known skills found.")
			return nil
		}
		for _, s := range result.Skills {
			fmt.Printf("%s  %s  [%s, %.2f]\n",
				colorize(colorBold, s.Skill),
				s.Category,
				s.Method,
				s.Confidence,
			)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().String("text", "", "text to scan")
	extractCmd.Flags().String("file", "", "file whose contents to scan")
	extractCmd.Flags().String("method", "", "extraction method: regex, semantic, or hybrid (default hybrid)")
}

// --- rank ---

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank job postings for a candidate profile",
	Long: `Rank job postings for a candidate profile.

The candidate can be described inline (--skills, --experience,
--interests), loaded from a JSON profile file (--profile), or built from
a PDF resume (--resume). Inline flags override file-provided fields.

Examples:
  jobradar rank --skills python,sql --experience "5 years of data pipelines"
  jobradar rank --profile ./candidate.json --top 5
  jobradar rank --resume ./resume.pdf --skills go,kubernetes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		skillsStr, _ := cmd.Flags().GetString("skills")
		experience, _ := cmd.Flags().GetString("experience")
		interests, _ := cmd.Flags().GetString("interests")
		profilePath, _ := cmd.Flags().GetString("profile")
		resumePath, _ := cmd.Flags().GetString("resume")
		top, _ := cmd.Flags().GetInt("top")
		minSkillMatch, _ := cmd.Flags().GetFloat64("min-skill-match")

		var cand profile.Candidate
		switch {
		case profilePath != "":
			c, err := profile.LoadFile(profilePath)
			if err != nil {
				return err
			}
			cand = c
		case resumePath != "":
			c, err := profile.FromPDF(resumePath)
			if err != nil {
				return err
			}
			cand = c
		}

		if skillsStr != "" {
			parts := strings.Split(skillsStr, ",")
			skills := make([]string, 0, len(parts))
			for _, p := range parts {
				if s := strings.TrimSpace(p); s != "" {
					skills = append(skills, s)
				}
			}
			cand.Skills = skills
		}
		if experience != "" {
			cand.Experience = experience
		}
		if interests != "" {
			cand.Interests = interests
		}

		if len(cand.Skills) == 0 && cand.Experience == "" && cand.Interests == "" {
			return fmt.Errorf("empty candidate profile: provide --skills, --experience, --interests, --profile, or --resume")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{
			"name":       cand.Name,
			"skills":     cand.Skills,
			"experience": cand.Experience,
			"interests":  cand.Interests,
			"top_k":      top,
		}
		// Only an explicitly set flag is sent: the server treats a
		// present zero as "any overlap counts", not as the default.
		if cmd.Flags().Changed("min-skill-match") {
			body["min_skill_match"] = minSkillMatch
		}

		resp, err := client.post(cmd.Context(), "/recommendations", body)
		if err != nil {
			return err
		}

		var result struct {
			Recommendations []struct {
				JobID         string  `json:"job_id"`
				Title         string  `json:"title"`
				Company       string  `json:"company"`
				Location      string  `json:"location"`
				SkillScore    float64 `json:"skill_match_score"`
				SemanticScore float64 `json:"semantic_similarity_score"`
				Combined      float64 `json:"combined_score"`
			} `json:"recommendations"`
			Count int `json:"count"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.Count == 0 {
			fmt.Println("No matching jobs found.")
			return nil
		}
		for i, r := range result.Recommendations {
			header := fmt.Sprintf("%d. %s", i+1, r.Title)
			fmt.Printf("\n%s  [%.3f]\n", colorize(colorBold, header), r.Combined)
			if r.Company != "" || r.Location != "" {
				fmt.Printf("   %s  %s\n", r.Company, r.Location)
			}
			fmt.Printf("   %s  skill %.3f · semantic %.3f\n",
				colorize(colorCyan, r.JobID), r.SkillScore, r.SemanticScore)
		}
		return nil
	},
}

func init() {
	rankCmd.Flags().String("skills", "", "comma-separated candidate skills")
	rankCmd.Flags().String("experience", "", "free-text experience summary")
	rankCmd.Flags().String("interests", "", "free-text interests summary")
	rankCmd.Flags().String("profile", "", "path to a candidate profile JSON file")
	rankCmd.Flags().String("resume", "", "path to a PDF resume")
	rankCmd.Flags().Int("top", 0, "maximum number of recommendations (default 10)")
	rankCmd.Flags().Float64("min-skill-match", 0, "minimum skill-match ratio (default 0.3; 0 counts any overlap)")
}

// --- job ---

var jobCmd = &cobra.Command{
	Use:   "job <id>",
	Short: "Show a job posting and its extracted skills",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/jobs/"+args[0])
		if err != nil {
			return err
		}
		var job any
		if err := decodeJSON(resp, &job); err != nil {
			return err
		}

		skillsResp, err := client.get(cmd.Context(), "/jobs/"+args[0]+"/skills")
		if err != nil {
			return err
		}
		var skills any
		if err := decodeJSON(skillsResp, &skills); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(job); err != nil {
			return err
		}
		return enc.Encode(skills)
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
