package main

import "school-admin/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
