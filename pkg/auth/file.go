package auth

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/model"
	"gopkg.in/yaml.v3"
)

// partnersFile is the layout of a partner YAML file:
//
//	partners:
//	  <api key>:
//	    name: Acme
//	    tier: standard
//	    approved: true
type partnersFile struct {
	Partners map[string]*model.Partner `yaml:"partners"`
}

// FileRegistry is a read-only Registry loaded from a YAML file
type FileRegistry struct {
	partners map[string]*model.Partner
}

func LoadFile(path string) (*FileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read partners file", goerr.V("path", path))
	}

	var file partnersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse partners file", goerr.V("path", path))
	}

	partners := make(map[string]*model.Partner, len(file.Partners))
	for key, p := range file.Partners {
		if key == "" || p == nil {
			return nil, goerr.New("invalid partner entry", goerr.V("path", path), goerr.V("key", key))
		}
		p.ID = key
		partners[key] = p
	}

	return &FileRegistry{partners: partners}, nil
}

func (r *FileRegistry) GetPartner(_ context.Context, apiKey string) (*model.Partner, error) {
	p, ok := r.partners[apiKey]
	if !ok {
		return nil, nil
	}
	v := *p
	return &v, nil
}

// Partners returns a copy of every partner in the file keyed by API key
func (r *FileRegistry) Partners() map[string]*model.Partner {
	out := make(map[string]*model.Partner, len(r.partners))
	for k, p := range r.partners {
		v := *p
		out[k] = &v
	}
	return out
}
