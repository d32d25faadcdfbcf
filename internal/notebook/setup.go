package notebook

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/nbpublish/internal/publish"
)

// SetupCellID is assigned to generated setup cells in nbformat 4.5+ documents.
const SetupCellID = "workshop-setup"

// ReleaseDownloadURL is where a setup cell fetches its data archive.
func ReleaseDownloadURL(githubRepo, zipName string) string {
	return fmt.Sprintf("https://github.com/%s/releases/latest/download/%s", githubRepo, zipName)
}

// SetupCell builds the code cell that installs packages and downloads and
// extracts the data archive in the learner's environment.
func SetupCell(zipName, githubRepo, install string, links []publish.Link) Cell {
	source := Source{
		"# Run this cell first to set up the environment\n",
		"import os\n",
		"import urllib.request\n",
		"import zipfile\n",
		"\n",
		"# Install required packages\n",
		fmt.Sprintf("!pip install -q %s\n", install),
		"\n",
		"# Download and extract data files\n",
		fmt.Sprintf("url = '%s'\n", ReleaseDownloadURL(githubRepo, zipName)),
		"print(f'Downloading data from {url}...')\n",
		fmt.Sprintf("urllib.request.urlretrieve(url, '%s')\n", zipName),
		"\n",
		fmt.Sprintf("print('Extracting %s...')\n", zipName),
		fmt.Sprintf("with zipfile.ZipFile('%s', 'r') as zip_ref:\n", zipName),
		"    zip_ref.extractall('.')\n",
		"\n",
		fmt.Sprintf("os.remove('%s')\n", zipName),
		"print('✓ Data files extracted!')",
	}

	if len(links) > 0 {
		source = append(source, "\n", "# Useful links:\n")
		for _, link := range links {
			if link.Description != "" {
				source = append(source, fmt.Sprintf("# - %s: %s (%s)\n", link.DisplayName(), link.Target(), link.Description))
			} else {
				source = append(source, fmt.Sprintf("# - %s: %s\n", link.DisplayName(), link.Target()))
			}
		}
	}

	return Cell{
		CellType: CellCode,
		Metadata: map[string]json.RawMessage{},
		Source:   source,
		Outputs:  []json.RawMessage{},
	}
}
