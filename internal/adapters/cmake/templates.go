package cmake

import "text/template"

var toolchainTemplate = template.Must(template.New("toolchain").Parse(`# Generated by kiln. Do not edit.
{{- range .Variables}}
set({{.Name}} "{{.Value}}" CACHE STRING "" FORCE)
{{- end}}
set(CMAKE_FIND_PACKAGE_PREFER_CONFIG ON)
list(PREPEND CMAKE_PREFIX_PATH "${CMAKE_CURRENT_LIST_DIR}")
{{- range .Dependencies}}
set({{.Name}}_DIR "${CMAKE_CURRENT_LIST_DIR}")
{{- end}}
`))

var configTemplate = template.Must(template.New("config").Parse(`# Generated by kiln for {{.Ref}}. Do not edit.
if(TARGET {{.Target}})
  return()
endif()

set({{.Name}}_VERSION "{{.Version}}")
set({{.Name}}_INCLUDE_DIRS {{.IncludeDirs}})
set({{.Name}}_LIB_DIRS {{.LibDirs}})
set({{.Name}}_LIBRARIES {{.Libs}})

add_library({{.Target}} INTERFACE IMPORTED)
set_target_properties({{.Target}} PROPERTIES
  INTERFACE_INCLUDE_DIRECTORIES "${ {{- .Name}}_INCLUDE_DIRS}")

foreach(_kiln_lib IN LISTS {{.Name}}_LIBRARIES)
  find_library(_kiln_lib_path NAMES ${_kiln_lib} PATHS ${ {{- .Name}}_LIB_DIRS} NO_DEFAULT_PATH NO_CACHE)
  if(NOT _kiln_lib_path)
    message(FATAL_ERROR "kiln: library ${_kiln_lib} of {{.Ref}} not found")
  endif()
  target_link_libraries({{.Target}} INTERFACE "${_kiln_lib_path}")
  unset(_kiln_lib_path)
endforeach()

set({{.Name}}_FOUND TRUE)
`))

var versionTemplate = template.Must(template.New("version").Parse(`# Generated by kiln for {{.Ref}}. Do not edit.
set(PACKAGE_VERSION "{{.Version}}")

if(PACKAGE_FIND_VERSION VERSION_GREATER PACKAGE_VERSION)
  set(PACKAGE_VERSION_COMPATIBLE FALSE)
else()
  set(PACKAGE_VERSION_COMPATIBLE TRUE)
  if(PACKAGE_FIND_VERSION STREQUAL PACKAGE_VERSION)
    set(PACKAGE_VERSION_EXACT TRUE)
  endif()
endif()
`))
