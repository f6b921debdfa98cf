package shell

import (
	"encoding/json"

	"github.com/abiosoft/ishell"
)

func displayJSON(c *ishell.Context, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	c.Println(string(output))
	return nil
}
