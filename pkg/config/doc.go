/*
Package config loads and validates imgcollect consolidation configs.

	            +-------------+
	            |   Config    |
	            |  (one run)  |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  JSON   |   |  YAML   |   |   HCL   |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Reads a config file in the format implied by its extension
- Rejects unknown fields and missing required fields
- Fills defaults (rename scheme, accepted extensions)
- Normalizes paths and extensions so the engine never has to

📝 Fields:

	sources                    ordered list of directories (required)
	destination                directory to merge into (required)
	rename_scheme              source_prefix | timestamp_hash | sequential
	rename_only_on_conflict    rename instead of overwrite on a content conflict
	delete_missing_in_sources  mirror: remove destination files no source produced
	extensions                 accepted extensions, default .jpg .jpeg .png
	ignore_patterns            doublestar globs matched against base names
	verify_image_content       reject files whose magic bytes are not an image

🔍 Example:

	cfg, err := config.Load(ctx, "collect.yaml")
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	fmt.Println(cfg) // a,b -> merged (source_prefix)
*/
package config
