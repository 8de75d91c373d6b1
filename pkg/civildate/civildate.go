// Package civildate interpreta fechas civiles YYYY-MM-DD en la zona horaria fija del negocio
// (UTC−3, sin horario de verano). Los clientes envían sólo la fecha; la hora la decide el servidor.
package civildate

import (
	"fmt"
	"strings"
	"time"
)

// Layout formato de fecha civil en la frontera HTTP.
const Layout = "2006-01-02"

// DefaultOffsetHours desplazamiento de Argentina respecto de UTC.
const DefaultOffsetHours = -3

// Calendar convierte fechas civiles en instantes de la zona del negocio.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New construye un calendario con un desplazamiento fijo en horas respecto de UTC.
func New(offsetHours int) Calendar {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return Calendar{loc: time.FixedZone(name, offsetHours*3600), now: time.Now}
}

// Default calendario UTC−3.
func Default() Calendar { return New(DefaultOffsetHours) }

// WithClock devuelve una copia que usa now como reloj (tests).
func (c Calendar) WithClock(now func() time.Time) Calendar {
	c.now = now
	return c
}

// Location zona del negocio.
func (c Calendar) Location() *time.Location { return c.loc }

// Now instante actual en la zona del negocio.
func (c Calendar) Now() time.Time { return c.now().In(c.loc) }

// Parse interpreta s (YYYY-MM-DD) como la medianoche local de ese día.
func (c Calendar) Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: se espera YYYY-MM-DD", s)
	}
	return t, nil
}

// DateOrNow devuelve Now si s está vacío; si no, la medianoche local del día indicado.
// Si s es el día de hoy se conserva la hora actual para mantener el orden de los movimientos del día.
func (c Calendar) DateOrNow(s string) (time.Time, error) {
	now := c.Now()
	if strings.TrimSpace(s) == "" {
		return now, nil
	}
	d, err := c.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if c.Format(now) == c.Format(d) {
		return now, nil
	}
	return d, nil
}

// Format fecha civil de t en la zona del negocio.
func (c Calendar) Format(t time.Time) string { return t.In(c.loc).Format(Layout) }

// Range convierte [from, to] (ambos inclusive, opcionales) en [desde, hasta) con hasta = día siguiente a to.
func (c Calendar) Range(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if strings.TrimSpace(from) != "" {
		t, err := c.Parse(from)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if strings.TrimSpace(to) != "" {
		t, err := c.Parse(to)
		if err != nil {
			return nil, nil, err
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, fmt.Errorf("rango inválido: %s es posterior a %s", from, to)
	}
	return start, end, nil
}
