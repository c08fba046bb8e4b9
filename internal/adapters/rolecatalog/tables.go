package rolecatalog

import (
	domainauth "github.com/target/dash-console/internal/domain/auth"
	nav "github.com/target/dash-console/internal/domain/navigation"
)

// Tables holds the static role, sub-role, child and menu definitions.
type Tables struct {
	Roles    map[domainauth.Role][]nav.Item
	SubRoles map[domainauth.SubRole][]nav.Item
	Child    []nav.Item
	Menus    map[string][]nav.Item
}

func leaf(id, title, icon, link string) nav.Item {
	return nav.Item{ID: id, Type: nav.KindBasic, Title: title, Icon: icon, Link: link}
}

func group(id, title string, children ...nav.Item) nav.Item {
	return nav.Item{ID: id, Type: nav.KindGroup, Title: title, Children: children}
}

func collapsible(id, title, icon string, children ...nav.Item) nav.Item {
	return nav.Item{ID: id, Type: nav.KindCollapsible, Title: title, Icon: icon, Children: children}
}

// DefaultTables returns the built-in catalog. A fresh value is built on every call.
func DefaultTables() Tables {
	return Tables{
		Roles: map[domainauth.Role][]nav.Item{
			domainauth.RoleCollaborator: {
				leaf("inicio", "Inicio", "heroicons_outline:home", "/inicio"),
				leaf("perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("viajes", "Viajes", "heroicons_outline:truck", "/viajes"),
				leaf("historial", "Historial", "heroicons_outline:clock", "/historial"),
			},
			domainauth.RoleHR: {
				leaf("inicio", "Inicio", "heroicons_outline:home", "/inicio"),
				group("personal", "Personal",
					leaf("empleados", "Empleados", "heroicons_outline:users", "/empleados"),
					leaf("roles", "Roles", "heroicons_outline:identification", "/roles"),
				),
				collapsible("nomina", "Nómina", "heroicons_outline:banknotes",
					leaf("recibos", "Recibos", "", "/nomina/recibos"),
					leaf("historial-nomina", "Historial", "", "/nomina/historial"),
				),
				leaf("perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
			},
			domainauth.RoleAdmin: {
				leaf("inicio", "Inicio", "heroicons_outline:home", "/inicio"),
				group("personal", "Personal",
					leaf("empleados", "Empleados", "heroicons_outline:users", "/empleados"),
					leaf("roles", "Roles", "heroicons_outline:identification", "/roles"),
				),
				group("facturacion", "Facturación",
					leaf("facturas", "Facturas", "heroicons_outline:document-text", "/facturas"),
					leaf("nueva-factura", "Nueva factura", "heroicons_outline:document-plus", "/facturas/nueva"),
				),
				leaf("perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
			},
			domainauth.RoleSuperAdmin: {
				leaf("inicio", "Inicio", "heroicons_outline:home", "/inicio"),
				group("administracion", "Administración",
					leaf("empleados", "Empleados", "heroicons_outline:users", "/empleados"),
					leaf("roles", "Roles", "heroicons_outline:identification", "/roles"),
					leaf("usuarios", "Usuarios", "heroicons_outline:user-group", "/usuarios"),
				),
				group("facturacion", "Facturación",
					leaf("facturas", "Facturas", "heroicons_outline:document-text", "/facturas"),
					leaf("ordenes", "Órdenes", "heroicons_outline:clipboard-document-list", "/ordenes"),
				),
				collapsible("reportes", "Reportes", "heroicons_outline:chart-bar",
					leaf("reporte-produccion", "Producción", "", "/reportprod"),
					leaf("reporte-nomina", "Nómina", "", "/reportes/nomina"),
				),
				leaf("configuracion", "Configuración", "heroicons_outline:cog-6-tooth", "/configuracion"),
			},
		},
		SubRoles: map[domainauth.SubRole][]nav.Item{
			domainauth.SubRoleSupervisor: {
				leaf("inicio", "Inicio", "heroicons_outline:home", "/inicio"),
				leaf("perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("equipo", "Mi equipo", "heroicons_outline:user-group", "/equipo"),
				leaf("reporte-produccion", "Reporte de producción", "heroicons_outline:chart-bar", "/reportprod"),
				leaf("historial", "Historial", "heroicons_outline:clock", "/historial"),
			},
			domainauth.SubRoleJefe: {
				leaf("inicio", "Inicio", "heroicons_outline:home", "/inicio"),
				leaf("tablero", "Tablero", "heroicons_outline:presentation-chart-line", "/tablero"),
				group("gestion", "Gestión",
					leaf("equipo", "Mi equipo", "heroicons_outline:user-group", "/equipo"),
					leaf("aprobaciones", "Aprobaciones", "heroicons_outline:check-badge", "/aprobaciones"),
				),
				leaf("reporte-produccion", "Reporte de producción", "heroicons_outline:chart-bar", "/reportprod"),
				leaf("perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
			},
		},
		Child: []nav.Item{
			{
				ID:    "reportprod",
				Type:  nav.KindAside,
				Title: "Reportes de producción",
				Children: []nav.Item{
					leaf("reportprod-nuevo", "Nuevo reporte", "heroicons_outline:plus-circle", "/reportprod/nuevo"),
					leaf("reportprod-lista", "Reportes", "heroicons_outline:queue-list", "/reportprod/lista"),
					leaf("reportprod-estadisticas", "Estadísticas", "heroicons_outline:chart-pie", "/reportprod/estadisticas"),
				},
			},
		},
		Menus: map[string][]nav.Item{
			string(domainauth.RoleCollaborator): {
				leaf("menu-perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("menu-viajes", "Mis viajes", "heroicons_outline:truck", "/viajes"),
			},
			string(domainauth.RoleHR): {
				leaf("menu-perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("menu-empleados", "Empleados", "heroicons_outline:users", "/empleados"),
				leaf("menu-nomina", "Nómina", "heroicons_outline:banknotes", "/nomina/recibos"),
			},
			string(domainauth.RoleAdmin): {
				leaf("menu-perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("menu-facturas", "Facturas", "heroicons_outline:document-text", "/facturas"),
			},
			string(domainauth.RoleSuperAdmin): {
				leaf("menu-perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("menu-usuarios", "Usuarios", "heroicons_outline:user-group", "/usuarios"),
				leaf("menu-configuracion", "Configuración", "heroicons_outline:cog-6-tooth", "/configuracion"),
			},
			string(domainauth.SubRoleSupervisor): {
				leaf("menu-perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("menu-equipo", "Mi equipo", "heroicons_outline:user-group", "/equipo"),
			},
			string(domainauth.SubRoleJefe): {
				leaf("menu-perfil", "Perfil", "heroicons_outline:user-circle", "/perfil"),
				leaf("menu-aprobaciones", "Aprobaciones", "heroicons_outline:check-badge", "/aprobaciones"),
			},
		},
	}
}
