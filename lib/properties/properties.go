package properties

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"weir/weir"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ErrPropertyNotSet = fmt.Errorf("property is required but not set")
	ErrPropertyIsNil  = fmt.Errorf("property and property default are both nil")
)

type properties struct {
	*viper.Viper
	global *viper.Viper
}

func (p *properties) Sub(key string) weir.Properties {
	return &properties{Viper: p.Viper.Sub(key), global: p.global}
}

func (p *properties) PrefixKeys(prefix string) []string {
	all := p.Viper.GetStringMap(prefix)
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	return keys
}

func (p *properties) Global() weir.Properties {
	return &properties{Viper: p.global, global: p.global}
}

func (p *properties) GetStringSlice(property weir.Property) []string {
	return p.Viper.GetStringSlice(property.Name())
}

func (p *properties) GetString(property weir.Property) string {
	return p.Viper.GetString(property.Name())
}

func (p *properties) GetInt(property weir.Property) int {
	return p.Viper.GetInt(property.Name())
}

func (p *properties) GetBool(property weir.Property) bool {
	return p.Viper.GetBool(property.Name())
}

func (p *properties) GetUint64(property weir.Property) uint64 {
	return p.Viper.GetUint64(property.Name())
}

func (p *properties) GetDuration(property weir.Property) time.Duration {
	return p.Viper.GetDuration(property.Name())
}

// InitAndRender validates a component's properties against its definitions,
// fills in defaults, and renders the effective values as a table for the
// startup log.
func InitAndRender(p weir.Properties, def weir.PropertiesDef) (string, error) {
	_p, ok := p.(*properties)
	if !ok {
		return "", nil
	}
	buffer := &bytes.Buffer{}
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"name", "type", "value"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, property := range def {
		if property.Required() {
			if !_p.Viper.IsSet(property.Name()) {
				return "", errors.WithMessage(ErrPropertyNotSet, property.Name())
			}
		} else {
			if property.Default() == nil && !_p.Viper.IsSet(property.Name()) {
				return "", errors.WithMessage(ErrPropertyIsNil, property.Name())
			}
			_p.Viper.SetDefault(property.Name(), property.Default())
		}
		table.Append([]string{
			property.Name(),
			property.Type(),
			fmt.Sprintf("%+v", _p.Viper.Get(property.Name())),
		})
	}
	table.Render()
	return buffer.String(), nil
}

// RenderDef renders property definitions for the inventory command.
func RenderDef(def weir.PropertiesDef) string {
	buffer := &bytes.Buffer{}
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"name", "description", "required", "type", "default"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, p := range def {
		table.Append([]string{
			p.Name(),
			p.Description(),
			strconv.FormatBool(p.Required()),
			p.Type(),
			fmt.Sprintf("%+v", p.Default()),
		})
	}
	table.Render()
	return buffer.String()
}

func New(propertiesName string, propertiesType string, propertiesPath ...string) weir.Properties {
	v := viper.New()
	v.SetConfigName(propertiesName)
	v.SetConfigType(propertiesType)
	for _, p := range propertiesPath {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Sprintf("read config error:%s", err.Error()))
	}
	return &properties{Viper: v, global: v.Sub("global")}
}
