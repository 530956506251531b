// Package ubigeo expone el catálogo de ubicaciones del Perú
// (departamento / provincia / distrito) embebido en el binario.
// Es solo data de referencia: los pedidos guardan id + nombre como snapshot.
package ubigeo

import (
	_ "embed"
	"encoding/json"
	"sync"
)

//go:embed data.json
var rawData []byte

type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type district struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type province struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Districts []district `json:"districts"`
}

type department struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Provinces []province `json:"provinces"`
}

type dataset struct {
	Departments []department `json:"departments"`
}

var (
	once sync.Once
	ds   dataset

	provsByDep  map[string][]province
	distsByProv map[string][]district
	depNames    map[string]string
	provNames   map[string]string
	distNames   map[string]string
)

func load() {
	once.Do(func() {
		if err := json.Unmarshal(rawData, &ds); err != nil {
			// data.json se embebe en build; si no parsea es un bug de build
			panic("ubigeo: invalid embedded dataset: " + err.Error())
		}

		provsByDep = make(map[string][]province)
		distsByProv = make(map[string][]district)
		depNames = make(map[string]string)
		provNames = make(map[string]string)
		distNames = make(map[string]string)

		for _, d := range ds.Departments {
			depNames[d.ID] = d.Name
			provsByDep[d.ID] = d.Provinces
			for _, p := range d.Provinces {
				provNames[p.ID] = p.Name
				distsByProv[p.ID] = p.Districts
				for _, di := range p.Districts {
					distNames[di.ID] = di.Name
				}
			}
		}
	})
}

func Departments() []Option {
	load()
	out := make([]Option, 0, len(ds.Departments))
	for _, d := range ds.Departments {
		out = append(out, Option{ID: d.ID, Name: d.Name})
	}
	return out
}

func ProvincesByDepartment(depID string) []Option {
	load()
	ps := provsByDep[depID]
	out := make([]Option, 0, len(ps))
	for _, p := range ps {
		out = append(out, Option{ID: p.ID, Name: p.Name})
	}
	return out
}

func DistrictsByProvince(provID string) []Option {
	load()
	dsts := distsByProv[provID]
	out := make([]Option, 0, len(dsts))
	for _, d := range dsts {
		out = append(out, Option{ID: d.ID, Name: d.Name})
	}
	return out
}

// DepartmentName devuelve "" si el id no existe en el catálogo.
func DepartmentName(depID string) string {
	load()
	return depNames[depID]
}

func ProvinceName(provID string) string {
	load()
	return provNames[provID]
}

func DistrictName(distID string) string {
	load()
	return distNames[distID]
}
