package framework

import (
	"fmt"
	"io/ioutil"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
)

// LoadYAMLFile loads a YAML config file into out. Unknown keys are errors.
func LoadYAMLFile(path string, out interface{}) error {
	glog.Infof("loading config file: %s", path)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not open config file: %v", err)
	}
	if err = yaml.UnmarshalStrict(data, out); err != nil {
		return fmt.Errorf("could not parse config file: %v", err)
	}
	return nil
}
