// Command relampo-editor edits Relampo YAML load tests as a tree.
package main

import "github.com/relampo/relampo-yml-editor-sub000/cmd"

func main() {
	cmd.Execute()
}
