package main

import "github.com/fhir-analytics/ingest-backend/cmd"

func main() {
	cmd.Execute()
}
